package httpapi

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/models"
)

const ctxUserKey = "auth_user"

// requestLogger logs one line per request with method, path, status and
// latency.
func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// authMiddleware resolves the bearer token to a live user on every request,
// so blocks and role changes apply immediately rather than at token expiry.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			writeError(c, apperrors.NewAuthenticationError("Missing authorization token"))
			return
		}

		user, err := s.auth.GetCurrentUser(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// adminMiddleware gates a route group to admins. Must run after
// authMiddleware.
func (s *Server) adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.auth.RequireAdmin(currentUser(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Next()
	}
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// currentUser returns the user set by authMiddleware; nil on unauthenticated
// routes.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
