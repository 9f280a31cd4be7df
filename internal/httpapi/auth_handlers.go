package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tgcatalog/backend/internal/apperrors"
)

type verifyRequest struct {
	InitData string `json:"init_data"`
}

type authResponse struct {
	Token   tokenResponse `json:"token"`
	User    userResponse  `json:"user"`
	IsAdmin bool          `json:"is_admin"`
}

// handleAuthVerify exchanges signed Telegram init data for a session token.
// This is the only unauthenticated endpoint besides the health check.
func (s *Server) handleAuthVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}
	if req.InitData == "" {
		writeError(c, apperrors.NewValidationError("init_data is required"))
		return
	}

	user, token, err := s.auth.AuthenticateTelegram(c.Request.Context(), req.InitData)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Token:   toTokenResponse(token),
		User:    toUserResponse(user),
		IsAdmin: user.IsAdmin(),
	})
}

func (s *Server) handleAuthMe(c *gin.Context) {
	user := currentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user":     toUserResponse(user),
		"is_admin": user.IsAdmin(),
	})
}

// handleAuthRefresh issues a fresh token for the already-authenticated user,
// letting long-lived Mini App sessions roll over without re-verification.
func (s *Server) handleAuthRefresh(c *gin.Context) {
	user := currentUser(c)

	token, err := s.auth.CreateAccessToken(user)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		Token:   toTokenResponse(token),
		User:    toUserResponse(user),
		IsAdmin: user.IsAdmin(),
	})
}

// idParam parses the numeric :id path segment.
func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid ID")
	}
	return id, nil
}

// pageParams reads limit/offset query values; the service clamps them.
func pageParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
