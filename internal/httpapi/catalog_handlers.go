package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/repositories/catalog"
	"github.com/tgcatalog/backend/internal/services"
)

// handleListModels pages the catalog. Regular users only ever see active
// models; admins may pass is_active to inspect deactivated ones.
func (s *Server) handleListModels(c *gin.Context) {
	filter := catalog.Filter{
		Query:    c.Query("q"),
		Brand:    c.Query("brand"),
		Category: c.Query("category"),
	}
	if v := c.Query("year_from"); v != "" {
		filter.YearFrom, _ = strconv.Atoi(v)
	}
	if v := c.Query("year_to"); v != "" {
		filter.YearTo, _ = strconv.Atoi(v)
	}
	if v := c.Query("has_files"); v != "" {
		b := v == "true" || v == "1"
		filter.HasFiles = &b
	}

	user := currentUser(c)
	if user.IsAdmin() {
		if v := c.Query("is_active"); v != "" {
			b := v == "true" || v == "1"
			filter.IsActive = &b
		}
	} else {
		active := true
		filter.IsActive = &active
	}

	limit, offset := pageParams(c)
	list, total, err := s.catalog.ListModels(c.Request.Context(), filter, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toList(list, total, limit, offset, toModelResponse))
}

func (s *Server) handleGetModel(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	m, err := s.catalog.GetModel(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	// Deactivated models are admin-only.
	if !m.IsActive && !currentUser(c).IsAdmin() {
		writeError(c, apperrors.NewNotFoundError("Model not found"))
		return
	}

	c.JSON(http.StatusOK, toModelResponse(m))
}

func (s *Server) handleListModelFiles(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	// 404 for unknown models rather than an empty listing.
	if _, err := s.catalog.GetModel(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	limit, offset := pageParams(c)
	list, total, err := s.files.ListFiles(c.Request.Context(), currentUser(c), id, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toList(list, total, limit, offset, toFileResponse))
}

type createModelRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	YearFrom    int    `json:"year_from"`
	YearTo      int    `json:"year_to"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func (s *Server) handleCreateModel(c *gin.Context) {
	var req createModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}

	created, err := s.catalog.CreateModel(c.Request.Context(), currentUser(c), &models.Model{
		Name:        req.Name,
		Code:        req.Code,
		Brand:       req.Brand,
		Category:    req.Category,
		YearFrom:    req.YearFrom,
		YearTo:      req.YearTo,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toModelResponse(created))
}

func (s *Server) handleUpdateModel(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var update services.ModelUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		writeError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}

	updated, err := s.catalog.UpdateModel(c.Request.Context(), currentUser(c), id, update)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toModelResponse(updated))
}

func (s *Server) handleDeactivateModel(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := s.catalog.DeactivateModel(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
