package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FreeMEM/DPMS/internal/db"
)

type juryMemberRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	EditionID uint   `json:"edition_id" binding:"required"`
	CompoIDs  []uint `json:"compo_ids"`
	Notes     string `json:"notes" binding:"max=500"`
}

func (s *Server) handleListJuryMembers(c *gin.Context) {
	members, err := s.store.ListJuryMembers(uintQuery(c, "edition"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (s *Server) handleCreateJuryMember(c *gin.Context) {
	var req juryMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid jury member payload")
		return
	}
	if _, err := s.store.UserByID(req.UserID); err != nil {
		s.respondError(c, err)
		return
	}
	if _, err := s.store.EditionByID(req.EditionID); err != nil {
		s.respondError(c, err)
		return
	}
	member := &db.JuryMember{
		UserID:    req.UserID,
		EditionID: req.EditionID,
		Notes:     req.Notes,
	}
	if err := s.store.CreateJuryMember(member, req.CompoIDs); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (s *Server) handleDeleteJuryMember(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteJuryMember(id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleJuryProgress reports a jury member's voting progress. Jury
// members may query their own; everything else is admin only.
func (s *Server) handleJuryProgress(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	member, err := s.store.JuryMemberByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if member.UserID != currentUserID(c) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your jury membership"})
		return
	}
	progress, err := s.votes.JuryProgress(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
