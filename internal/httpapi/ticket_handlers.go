package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/repositories/tickets"
	"github.com/tgcatalog/backend/internal/services"
)

type createTicketRequest struct {
	ModelID     int64  `json:"model_id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (s *Server) handleCreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}

	created, err := s.tickets.CreateTicket(c.Request.Context(), currentUser(c), services.CreateTicketParams{
		ModelID:     req.ModelID,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    models.TicketPriority(req.Priority),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTicketResponse(created))
}

// handleListTickets pages tickets. Filter query params beyond status are
// only honored for admins; the service scopes regular users to their own
// tickets regardless.
func (s *Server) handleListTickets(c *gin.Context) {
	filter := tickets.Filter{
		Status:   models.TicketStatus(c.Query("status")),
		Priority: models.TicketPriority(c.Query("priority")),
	}
	if v := c.Query("assignee_id"); v != "" {
		filter.AssigneeID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("model_id"); v != "" {
		filter.ModelID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("user_id"); v != "" {
		filter.UserID, _ = strconv.ParseInt(v, 10, 64)
	}

	limit, offset := pageParams(c)
	list, total, err := s.tickets.ListTickets(c.Request.Context(), currentUser(c), filter, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toList(list, total, limit, offset, toTicketResponse))
}

func (s *Server) handleGetTicket(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	t, err := s.tickets.GetTicket(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTicketResponse(t))
}

func (s *Server) handleListTicketMessages(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	msgs, err := s.tickets.ListMessages(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, toMessageResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type addMessageRequest struct {
	Body           string `json:"body"`
	IsInternalNote bool   `json:"is_internal_note"`
}

func (s *Server) handleAddTicketMessage(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}

	msg, err := s.tickets.AddMessage(c.Request.Context(), currentUser(c), id, req.Body, req.IsInternalNote)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

func (s *Server) handleUpdateTicket(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var update services.TicketUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		writeError(c, apperrors.NewValidationError("Invalid request body"))
		return
	}

	updated, err := s.tickets.UpdateTicket(c.Request.Context(), currentUser(c), id, update)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTicketResponse(updated))
}

func (s *Server) handleTicketStats(c *gin.Context) {
	stats, err := s.tickets.TicketStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":         stats.Total,
		"open":          stats.Open,
		"in_progress":   stats.InProgress,
		"resolved":      stats.Resolved,
		"closed":        stats.Closed,
		"high_priority": stats.HighPriority,
	})
}
