package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type castVoteRequest struct {
	ProductionID uint   `json:"production_id" binding:"required"`
	Score        int    `json:"score" binding:"required,min=1,max=10"`
	Comment      string `json:"comment" binding:"max=500"`
}

func (s *Server) handleCastVote(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid vote payload")
		return
	}
	vote, err := s.votes.CastVote(currentUserID(c), req.ProductionID, req.Score, req.Comment)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vote)
}

func (s *Server) handleMyVotes(c *gin.Context) {
	votes, err := s.store.VotesByUser(currentUserID(c), uintQuery(c, "edition"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, votes)
}

func (s *Server) handleProductionStats(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	stats, err := s.votes.StatsForProduction(id, isAdmin(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleEditionResults(c *gin.Context) {
	editionID := uintQuery(c, "edition")
	if editionID == 0 {
		badRequest(c, "edition query parameter is required")
		return
	}
	results, err := s.votes.EditionResults(editionID, isAdmin(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) handleEditionStats(c *gin.Context) {
	editionID := uintQuery(c, "edition")
	if editionID == 0 {
		badRequest(c, "edition query parameter is required")
		return
	}
	stats, err := s.votes.StatsForEdition(editionID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
