// Package server exposes the DPMS API over HTTP.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/FreeMEM/DPMS/internal/auth"
	"github.com/FreeMEM/DPMS/internal/config"
	"github.com/FreeMEM/DPMS/internal/db"
	"github.com/FreeMEM/DPMS/internal/voting"
)

type Server struct {
	store  db.Store
	votes  *voting.Service
	tokens *auth.TokenIssuer
	cfg    config.Config
	log    zerolog.Logger
}

func New(store db.Store, votes *voting.Service, tokens *auth.TokenIssuer, cfg config.Config, log zerolog.Logger) *Server {
	return &Server{
		store:  store,
		votes:  votes,
		tokens: tokens,
		cfg:    cfg,
		log:    log,
	}
}

// Router builds the gin engine with all API routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	authed := api.Group("")
	authed.Use(s.requireAuth())
	{
		authed.GET("/editions", s.handleListEditions)
		authed.GET("/editions/:id", s.handleGetEdition)
		authed.GET("/editions/:id/compos", s.handleEditionCompos)
		authed.GET("/compos", s.handleListCompos)
		authed.GET("/compos/:id", s.handleGetCompo)
		authed.GET("/productions", s.handleListProductions)
		authed.GET("/productions/:id", s.handleGetProduction)
		authed.POST("/productions", s.handleCreateProduction)
		authed.PUT("/productions/:id", s.handleUpdateProduction)
		authed.GET("/productions/:id/files", s.handleProductionFiles)
		authed.POST("/productions/:id/files", s.handleAttachFile)
		authed.POST("/files", s.handleCreateFile)
		authed.GET("/files/:id", s.handleGetFile)

		authed.GET("/voting-config", s.handleGetVotingConfig)
		authed.GET("/voting-periods", s.handleListPeriods)
		authed.GET("/voting-periods/current", s.handleCurrentPeriods)

		authed.POST("/attendance-codes/redeem", s.handleRedeemCode)

		authed.POST("/votes", s.handleCastVote)
		authed.GET("/votes/mine", s.handleMyVotes)
		authed.GET("/votes/production/:id", s.handleProductionStats)

		authed.GET("/results", s.handleEditionResults)
		authed.GET("/results/stats", s.handleEditionStats)

		authed.GET("/jury-members/:id/progress", s.handleJuryProgress)
	}

	admin := api.Group("")
	admin.Use(s.requireAuth(), s.requireAdmin())
	{
		admin.POST("/editions", s.handleCreateEdition)
		admin.PUT("/editions/:id", s.handleUpdateEdition)
		admin.DELETE("/editions/:id", s.handleDeleteEdition)
		admin.POST("/editions/:id/compos", s.handleAttachCompo)
		admin.POST("/compos", s.handleCreateCompo)

		admin.POST("/voting-config", s.handleSaveVotingConfig)
		admin.PUT("/voting-config", s.handleSaveVotingConfig)
		admin.POST("/voting-config/:edition/publish", s.handlePublishResults)

		admin.POST("/voting-periods", s.handleCreatePeriod)
		admin.PUT("/voting-periods/:id", s.handleUpdatePeriod)
		admin.DELETE("/voting-periods/:id", s.handleDeletePeriod)

		admin.POST("/attendance-codes/generate", s.handleGenerateCodes)
		admin.GET("/attendance-codes", s.handleListCodes)
		admin.GET("/attendance-codes/export", s.handleExportCodes)
		admin.GET("/attendance-codes/qr/:id", s.handleCodeQR)

		admin.GET("/attendee-verifications", s.handleListVerifications)
		admin.POST("/attendee-verifications", s.handleVerifyAttendee)
		admin.GET("/attendee-verifications/stats", s.handleVerificationStats)

		admin.GET("/jury-members", s.handleListJuryMembers)
		admin.POST("/jury-members", s.handleCreateJuryMember)
		admin.DELETE("/jury-members/:id", s.handleDeleteJuryMember)

		admin.GET("/events", s.handleListEvents)
	}

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}
