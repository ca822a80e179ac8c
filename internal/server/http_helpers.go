package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FreeMEM/DPMS/internal/db"
	"github.com/FreeMEM/DPMS/internal/voting"
)

// respondError translates engine and store errors into HTTP responses.
// Validation failures carry their machine-readable kind alongside the
// message so clients can branch without string matching.
func (s *Server) respondError(c *gin.Context, err error) {
	var vErr *voting.Error
	if errors.As(err, &vErr) {
		status := http.StatusBadRequest
		switch vErr {
		case voting.ErrResultsNotPublished:
			status = http.StatusForbidden
		case voting.ErrInvalidCode:
			status = http.StatusNotFound
		case voting.ErrCodeAlreadyUsed:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": vErr.Message, "kind": vErr.Kind})
		return
	}
	switch {
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, db.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	default:
		s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func idParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || value == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(value), true
}

func uintQuery(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(value)
}

func boolQuery(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value := raw == "true" || raw == "1"
	return &value
}
