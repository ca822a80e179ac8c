package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

type generateCodesRequest struct {
	EditionID uint   `json:"edition_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=1000"`
	Prefix    string `json:"prefix" binding:"max=10"`
}

type redeemCodeRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

type verifyAttendeeRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	EditionID uint   `json:"edition_id" binding:"required"`
	Method    string `json:"method" binding:"required,oneof=manual checkin"`
	Notes     string `json:"notes" binding:"max=500"`
}

func (s *Server) handleGenerateCodes(c *gin.Context) {
	var req generateCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid code generation payload")
		return
	}
	codes, err := s.votes.GenerateCodes(req.EditionID, req.Quantity, req.Prefix)
	if err != nil {
		s.respondError(c, err)
		return
	}
	preview := make([]string, 0, s.cfg.CodePreviewSize)
	for _, code := range codes {
		if len(preview) == s.cfg.CodePreviewSize {
			break
		}
		preview = append(preview, code.Code)
	}
	s.log.Info().Uint("edition_id", req.EditionID).Int("quantity", len(codes)).Msg("attendance codes generated")
	c.JSON(http.StatusCreated, gin.H{
		"quantity": len(codes),
		"codes":    preview,
	})
}

func (s *Server) handleRedeemCode(c *gin.Context) {
	var req redeemCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid code payload")
		return
	}
	code, err := s.votes.RedeemCode(currentUserID(c), req.Code)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "code redeemed, you are now verified as an attendee",
		"edition_id": code.EditionID,
	})
}

func (s *Server) handleListCodes(c *gin.Context) {
	codes, err := s.store.ListCodes(uintQuery(c, "edition"), boolQuery(c, "used"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

func (s *Server) handleExportCodes(c *gin.Context) {
	editionID := uintQuery(c, "edition")
	if editionID == 0 {
		badRequest(c, "edition query parameter is required")
		return
	}
	codes, err := s.store.ListCodes(editionID, nil)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "codes_edition_"+strconv.FormatUint(uint64(editionID), 10)+".csv"))
	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"code", "used", "used_by", "used_at"})
	for _, code := range codes {
		usedBy := ""
		if code.UsedByID != nil {
			if user, err := s.store.UserByID(*code.UsedByID); err == nil {
				usedBy = user.Email
			}
		}
		usedAt := ""
		if code.UsedAt != nil {
			usedAt = code.UsedAt.Format("2006-01-02 15:04")
		}
		used := "no"
		if code.IsUsed {
			used = "yes"
		}
		_ = writer.Write([]string{code.Code, used, usedBy, usedAt})
	}
	writer.Flush()
}

// handleCodeQR renders an attendance code as a QR PNG for printing.
func (s *Server) handleCodeQR(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	code, err := s.store.CodeByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	size := 256
	if raw := c.Query("size"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 64 && value <= 1024 {
			size = value
		}
	}
	png, err := qrcode.Encode(code.Code, qrcode.Medium, size)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleListVerifications(c *gin.Context) {
	verifications, err := s.store.ListVerifications(uintQuery(c, "edition"), boolQuery(c, "is_verified"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, verifications)
}

func (s *Server) handleVerifyAttendee(c *gin.Context) {
	var req verifyAttendeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid verification payload")
		return
	}
	verification, err := s.votes.VerifyAttendee(currentUserID(c), req.UserID, req.EditionID, req.Method, req.Notes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, verification)
}

func (s *Server) handleVerificationStats(c *gin.Context) {
	editionID := uintQuery(c, "edition")
	if editionID == 0 {
		badRequest(c, "edition query parameter is required")
		return
	}
	stats, err := s.votes.StatsForVerifications(editionID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleListEvents(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 && value <= 1000 {
			limit = value
		}
	}
	events, err := s.store.ListEvents(uintQuery(c, "edition"), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
