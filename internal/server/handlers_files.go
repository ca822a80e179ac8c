package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FreeMEM/DPMS/internal/db"
)

type fileRequest struct {
	Title            string `json:"title" binding:"required,max=255"`
	Description      string `json:"description"`
	OriginalFilename string `json:"original_filename" binding:"required,max=255"`
	Public           bool   `json:"public"`
}

type attachFileRequest struct {
	FileID uint `json:"file_id" binding:"required"`
}

func (s *Server) handleCreateFile(c *gin.Context) {
	var req fileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid file payload")
		return
	}
	file := &db.File{
		Title:            req.Title,
		Description:      req.Description,
		OriginalFilename: req.OriginalFilename,
		StoredName:       db.NewStoredName(req.OriginalFilename),
		Public:           req.Public,
		IsActive:         true,
		UploadedByID:     currentUserID(c),
	}
	if err := s.store.CreateFile(file); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file)
}

func (s *Server) handleGetFile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	file, err := s.store.FileByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, file)
}

func (s *Server) handleAttachFile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req attachFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid attach payload")
		return
	}
	production, err := s.store.ProductionByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if production.UploadedByID != currentUserID(c) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the owner"})
		return
	}
	if err := s.store.AttachFile(id, req.FileID); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleProductionFiles(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	files, err := s.store.ProductionFiles(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, files)
}
