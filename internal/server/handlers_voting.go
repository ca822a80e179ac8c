package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FreeMEM/DPMS/internal/db"
)

type votingConfigRequest struct {
	EditionID          uint   `json:"edition_id" binding:"required"`
	VotingMode         string `json:"voting_mode" binding:"required,oneof=public jury mixed"`
	PublicWeight       *int   `json:"public_weight"`
	JuryWeight         *int   `json:"jury_weight"`
	AccessMode         string `json:"access_mode" binding:"required,oneof=open code manual checkin"`
	ShowPartialResults bool   `json:"show_partial_results"`
}

type periodRequest struct {
	EditionID uint      `json:"edition_id" binding:"required"`
	CompoID   *uint     `json:"compo_id"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
	IsActive  *bool     `json:"is_active"`
}

func (s *Server) handleGetVotingConfig(c *gin.Context) {
	editionID := uintQuery(c, "edition")
	if editionID == 0 {
		badRequest(c, "edition query parameter is required")
		return
	}
	config, err := s.store.VotingConfigByEdition(editionID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (s *Server) handleSaveVotingConfig(c *gin.Context) {
	var req votingConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid voting configuration payload")
		return
	}
	config, err := s.store.VotingConfigByEdition(req.EditionID)
	if err != nil {
		if err != db.ErrNotFound {
			s.respondError(c, err)
			return
		}
		config = &db.VotingConfiguration{EditionID: req.EditionID, PublicWeight: 100}
	}
	config.VotingMode = req.VotingMode
	config.AccessMode = req.AccessMode
	config.ShowPartialResults = req.ShowPartialResults
	if req.PublicWeight != nil {
		config.PublicWeight = *req.PublicWeight
	}
	if req.JuryWeight != nil {
		config.JuryWeight = *req.JuryWeight
	}
	if err := s.votes.SaveConfig(config); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (s *Server) handlePublishResults(c *gin.Context) {
	editionID, ok := idParam(c, "edition")
	if !ok {
		return
	}
	config, err := s.votes.PublishResults(editionID, currentUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.log.Info().Uint("edition_id", editionID).Msg("results published")
	c.JSON(http.StatusOK, gin.H{
		"message":      "results published",
		"published_at": config.ResultsPublishedAt,
	})
}

func (s *Server) handleListPeriods(c *gin.Context) {
	periods, err := s.store.ListPeriods(db.PeriodFilter{
		EditionID:  uintQuery(c, "edition"),
		ActiveOnly: c.Query("is_active") == "true",
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, periods)
}

func (s *Server) handleCurrentPeriods(c *gin.Context) {
	periods, err := s.votes.CurrentPeriods(uintQuery(c, "edition"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, periods)
}

func (s *Server) handleCreatePeriod(c *gin.Context) {
	var req periodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid voting period payload")
		return
	}
	period := &db.VotingPeriod{
		EditionID: req.EditionID,
		CompoID:   req.CompoID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		IsActive:  true,
	}
	if req.IsActive != nil {
		period.IsActive = *req.IsActive
	}
	if err := s.votes.CreatePeriod(period); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, period)
}

func (s *Server) handleUpdatePeriod(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	period, err := s.store.PeriodByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req periodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid voting period payload")
		return
	}
	period.CompoID = req.CompoID
	period.StartDate = req.StartDate
	period.EndDate = req.EndDate
	if req.IsActive != nil {
		period.IsActive = *req.IsActive
	}
	if err := s.votes.UpdatePeriod(period); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, period)
}

func (s *Server) handleDeletePeriod(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeletePeriod(id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
