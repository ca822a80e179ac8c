package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FreeMEM/DPMS/internal/db"
)

type editionRequest struct {
	Title        string `json:"title" binding:"required,max=255"`
	Description  string `json:"description"`
	Public       bool   `json:"public"`
	OpenToUpload bool   `json:"open_to_upload"`
	OpenToUpdate bool   `json:"open_to_update"`
}

type compoRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

type attachCompoRequest struct {
	CompoID            uint      `json:"compo_id" binding:"required"`
	Start              time.Time `json:"start" binding:"required"`
	ShowAuthorsOnSlide *bool     `json:"show_authors_on_slide"`
	OpenToUpload       bool      `json:"open_to_upload"`
	OpenToUpdate       bool      `json:"open_to_update"`
}

type productionRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Authors     string `json:"authors" binding:"required,max=255"`
	Description string `json:"description"`
	EditionID   uint   `json:"edition_id" binding:"required"`
	CompoID     uint   `json:"compo_id" binding:"required"`
}

func (s *Server) handleListEditions(c *gin.Context) {
	editions, err := s.store.ListEditions(!isAdmin(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, editions)
}

func (s *Server) handleGetEdition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	edition, err := s.store.EditionByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, edition)
}

func (s *Server) handleCreateEdition(c *gin.Context) {
	var req editionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid edition payload")
		return
	}
	edition := &db.Edition{
		Title:        req.Title,
		Description:  req.Description,
		Public:       req.Public,
		OpenToUpload: req.OpenToUpload,
		OpenToUpdate: req.OpenToUpdate,
		UploadedByID: currentUserID(c),
	}
	if err := s.store.CreateEdition(edition); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, edition)
}

func (s *Server) handleUpdateEdition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	edition, err := s.store.EditionByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var req editionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid edition payload")
		return
	}
	edition.Title = req.Title
	edition.Description = req.Description
	edition.Public = req.Public
	edition.OpenToUpload = req.OpenToUpload
	edition.OpenToUpdate = req.OpenToUpdate
	if err := s.store.UpdateEdition(edition); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, edition)
}

func (s *Server) handleDeleteEdition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := s.store.DeleteEdition(id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEditionCompos(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	compos, err := s.store.EditionCompos(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compos)
}

func (s *Server) handleAttachCompo(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req attachCompoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid compo attachment payload")
		return
	}
	showAuthors := true
	if req.ShowAuthorsOnSlide != nil {
		showAuthors = *req.ShowAuthorsOnSlide
	}
	link := &db.HasCompo{
		EditionID:          id,
		CompoID:            req.CompoID,
		Start:              req.Start,
		ShowAuthorsOnSlide: showAuthors,
		OpenToUpload:       req.OpenToUpload,
		OpenToUpdate:       req.OpenToUpdate,
		CreatedByID:        currentUserID(c),
	}
	if err := s.store.AttachCompo(link); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (s *Server) handleListCompos(c *gin.Context) {
	compos, err := s.store.ListCompos()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compos)
}

func (s *Server) handleGetCompo(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	compo, err := s.store.CompoByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compo)
}

func (s *Server) handleCreateCompo(c *gin.Context) {
	var req compoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid compo payload")
		return
	}
	compo := &db.Compo{
		Name:        req.Name,
		Description: req.Description,
		CreatedByID: currentUserID(c),
	}
	if err := s.store.CreateCompo(compo); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, compo)
}

func (s *Server) handleListProductions(c *gin.Context) {
	productions, err := s.store.ListProductions(db.ProductionFilter{
		EditionID: uintQuery(c, "edition"),
		CompoID:   uintQuery(c, "compo"),
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, productions)
}

func (s *Server) handleGetProduction(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	production, err := s.store.ProductionByID(id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, production)
}

func (s *Server) handleCreateProduction(c *gin.Context) {
	var req productionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid production payload")
		return
	}
	if _, err := s.store.EditionByID(req.EditionID); err != nil {
		s.respondError(c, err)
		return
	}
	if _, err := s.store.CompoByID(req.CompoID); err != nil {
		s.respondError(c, err)
		return
	}
	production := &db.Production{
		Title:        req.Title,
		Authors:      req.Authors,
		Description:  req.Description,
		EditionID:    req.EditionID,
		CompoID:      req.CompoID,
		UploadedByID: currentUserID(c),
	}
	if err := s.store.CreateProduction(production); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, production)
}

func (s *Server) handleUpdateProduction(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
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
	var req productionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid production payload")
		return
	}
	production.Title = req.Title
	production.Authors = req.Authors
	production.Description = req.Description
	if err := s.store.UpdateProduction(production); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, production)
}
