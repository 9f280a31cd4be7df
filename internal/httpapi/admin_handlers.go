package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/models"
)

func (s *Server) handleListUsers(c *gin.Context) {
	limit, offset := pageParams(c)

	list, total, err := s.users.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toList(list, total, limit, offset, toUserResponse))
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	u, err := s.users.GetUser(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(u))
}

type setBlockedRequest struct {
	IsBlocked *bool `json:"is_blocked"`
}

func (s *Server) handleSetUserBlocked(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req setBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsBlocked == nil {
		writeError(c, apperrors.NewValidationError("is_blocked is required"))
		return
	}

	updated, err := s.users.SetBlocked(c.Request.Context(), currentUser(c), id, *req.IsBlocked)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(updated))
}

type setRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) handleSetUserRole(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}

	updated, err := s.users.SetRole(c.Request.Context(), currentUser(c), id, models.UserRole(req.Role))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(updated))
}
