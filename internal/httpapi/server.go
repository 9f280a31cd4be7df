// Package httpapi is the public HTTP surface of the backend: a gin router
// over the service layer, with bearer-token authentication and the shared
// error envelope.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/services"
)

type Server struct {
	auth    *services.AuthService
	users   *services.UserService
	catalog *services.CatalogService
	files   *services.FileService
	tickets *services.TicketService
	logger  logging.Logger
}

func NewServer(
	auth *services.AuthService,
	users *services.UserService,
	catalog *services.CatalogService,
	files *services.FileService,
	tickets *services.TicketService,
	logger logging.Logger,
) *Server {
	return &Server{
		auth:    auth,
		users:   users,
		catalog: catalog,
		files:   files,
		tickets: tickets,
		logger:  logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")

	v1.POST("/auth/verify", s.handleAuthVerify)

	authed := v1.Group("", s.authMiddleware())
	{
		authed.GET("/auth/me", s.handleAuthMe)
		authed.POST("/auth/refresh", s.handleAuthRefresh)

		authed.GET("/models", s.handleListModels)
		authed.GET("/models/:id", s.handleGetModel)
		authed.GET("/models/:id/files", s.handleListModelFiles)

		authed.GET("/files/:id", s.handleGetFile)
		authed.GET("/files/:id/download", s.handleDownloadFile)

		authed.POST("/tickets", s.handleCreateTicket)
		authed.GET("/tickets", s.handleListTickets)
		authed.GET("/tickets/:id", s.handleGetTicket)
		authed.GET("/tickets/:id/messages", s.handleListTicketMessages)
		authed.POST("/tickets/:id/messages", s.handleAddTicketMessage)
	}

	admin := authed.Group("/admin", s.adminMiddleware())
	{
		admin.POST("/models", s.handleCreateModel)
		admin.PATCH("/models/:id", s.handleUpdateModel)
		admin.DELETE("/models/:id", s.handleDeactivateModel)
		admin.POST("/models/:id/files", s.handleUploadFile)

		admin.PATCH("/files/:id", s.handleUpdateFile)
		admin.DELETE("/files/:id", s.handleDeleteFile)

		admin.GET("/tickets/stats", s.handleTicketStats)
		admin.PATCH("/tickets/:id", s.handleUpdateTicket)

		admin.GET("/users", s.handleListUsers)
		admin.GET("/users/:id", s.handleGetUser)
		admin.PATCH("/users/:id/block", s.handleSetUserBlocked)
		admin.PATCH("/users/:id/role", s.handleSetUserRole)
	}

	return r
}
