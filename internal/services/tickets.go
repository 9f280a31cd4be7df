package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/common"
	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/repositories/repomanager"
	"github.com/tgcatalog/backend/internal/repositories/tickets"
)

// TicketService implements support tickets: owners create and follow their
// own tickets, admins triage all of them. Visibility is enforced here, not
// in the repositories.
type TicketService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	notifier    TicketNotifier
	logger      logging.Logger
}

func NewTicketService(db *sql.DB, m repomanager.RepositoryManager, notifier TicketNotifier, logger logging.Logger) *TicketService {
	return &TicketService{db: db, repomanager: m, notifier: notifier, logger: logger}
}

type CreateTicketParams struct {
	ModelID     int64
	Subject     string
	Description string
	Priority    models.TicketPriority
}

// TicketUpdate is an admin-side partial update.
type TicketUpdate struct {
	Subject     *string                `json:"subject,omitempty"`
	Description *string                `json:"description,omitempty"`
	Priority    *models.TicketPriority `json:"priority,omitempty"`
	Status      *models.TicketStatus   `json:"status,omitempty"`
	AssigneeID  *int64                 `json:"assignee_id,omitempty"`
}

func validPriority(p models.TicketPriority) bool {
	switch p {
	case models.PriorityLow, models.PriorityNormal, models.PriorityHigh:
		return true
	}
	return false
}

func validStatus(s models.TicketStatus) bool {
	switch s {
	case models.StatusOpen, models.StatusInProgress, models.StatusResolved, models.StatusClosed:
		return true
	}
	return false
}

func (s *TicketService) CreateTicket(ctx context.Context, owner *models.User, params CreateTicketParams) (*models.Ticket, error) {
	if strings.TrimSpace(params.Subject) == "" {
		return nil, apperrors.NewValidationError("Ticket subject is required")
	}
	if params.Priority == "" {
		params.Priority = models.PriorityNormal
	}
	if !validPriority(params.Priority) {
		return nil, apperrors.NewValidationError("Invalid ticket priority")
	}

	if params.ModelID != 0 {
		if _, err := s.repomanager.Catalog(s.db).GetByID(ctx, params.ModelID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, apperrors.NewNotFoundError("Model not found")
			}
			return nil, fmt.Errorf("error fetching model: %w", err)
		}
	}

	ticket := &models.Ticket{
		UserID:      owner.ID,
		ModelID:     params.ModelID,
		Subject:     params.Subject,
		Description: params.Description,
		Priority:    params.Priority,
		Status:      models.StatusOpen,
	}

	created, err := s.repomanager.Tickets(s.db).Create(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("error creating ticket: %w", err)
	}

	s.notifier.TicketCreated(ctx, created, owner)

	return created, nil
}

// GetTicket returns the ticket if the viewer owns it or is an admin. Foreign
// tickets are indistinguishable from missing ones.
func (s *TicketService) GetTicket(ctx context.Context, viewer *models.User, id int64) (*models.Ticket, error) {
	ticket, err := s.repomanager.Tickets(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("Ticket not found")
		}
		return nil, fmt.Errorf("error fetching ticket: %w", err)
	}

	if ticket.UserID != viewer.ID && !viewer.IsAdmin() {
		return nil, apperrors.NewNotFoundError("Ticket not found")
	}

	return ticket, nil
}

// ListTickets pages tickets. Non-admin viewers are always scoped to their
// own tickets regardless of the requested filter.
func (s *TicketService) ListTickets(ctx context.Context, viewer *models.User, filter tickets.Filter, limit, offset int) ([]*models.Ticket, int64, error) {
	if !viewer.IsAdmin() {
		filter.UserID = viewer.ID
	}
	limit, offset = clampPage(limit, offset)

	repo := s.repomanager.Tickets(s.db)
	list, err := repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing tickets: %w", err)
	}

	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting tickets: %w", err)
	}

	return list, total, nil
}

// UpdateTicket applies an admin update. ClosedAt follows the status: set on
// the first transition into a terminal status, cleared on reopen.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *models.User, id int64, update TicketUpdate) (*models.Ticket, error) {
	repo := s.repomanager.Tickets(s.db)

	ticket, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("Ticket not found")
		}
		return nil, fmt.Errorf("error fetching ticket: %w", err)
	}

	prevStatus := ticket.Status

	if update.Subject != nil {
		if strings.TrimSpace(*update.Subject) == "" {
			return nil, apperrors.NewValidationError("Ticket subject is required")
		}
		ticket.Subject = *update.Subject
	}
	if update.Description != nil {
		ticket.Description = *update.Description
	}
	if update.Priority != nil {
		if !validPriority(*update.Priority) {
			return nil, apperrors.NewValidationError("Invalid ticket priority")
		}
		ticket.Priority = *update.Priority
	}
	if update.Status != nil {
		if !validStatus(*update.Status) {
			return nil, apperrors.NewValidationError("Invalid ticket status")
		}
		ticket.Status = *update.Status
	}
	if update.AssigneeID != nil {
		ticket.AssigneeID = *update.AssigneeID
	}

	if ticket.IsClosed() && ticket.ClosedAt == nil {
		now := time.Now()
		ticket.ClosedAt = &now
	}
	if ticket.IsOpen() && ticket.ClosedAt != nil {
		ticket.ClosedAt = nil
	}

	updated, err := repo.Update(ctx, ticket)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("Ticket not found")
		}
		return nil, fmt.Errorf("error updating ticket: %w", err)
	}

	action := models.ActionUpdate
	switch {
	case updated.Status != prevStatus:
		action = models.ActionStatusChange
	case update.AssigneeID != nil:
		action = models.ActionAssign
	}
	writeAudit(ctx, s.repomanager.Audit(s.db), s.logger,
		actor.ID, models.EntityTicket, updated.ID, action, update)

	if updated.Status != prevStatus {
		if owner, err := s.repomanager.Users(s.db).GetByID(ctx, updated.UserID); err == nil {
			s.notifier.TicketStatusChanged(ctx, updated, owner, prevStatus)
		} else {
			s.logger.Warn(ctx, "owner lookup for notification failed", "ticket_id", updated.ID, "error", err)
		}
	}

	return updated, nil
}

// AddMessage appends to a ticket thread. Owners and admins may post;
// internal notes are admin-only and closed tickets accept admin posts only.
func (s *TicketService) AddMessage(ctx context.Context, author *models.User, ticketID int64, body string, isInternalNote bool) (*models.TicketMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, apperrors.NewValidationError("Message body is required")
	}
	if isInternalNote && !author.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("Admin access required")
	}

	ticket, err := s.GetTicket(ctx, author, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsClosed() && !author.IsAdmin() {
		return nil, apperrors.NewValidationError("Ticket is closed")
	}

	msg, err := s.repomanager.Tickets(s.db).CreateMessage(ctx, &models.TicketMessage{
		TicketID:       ticketID,
		AuthorID:       author.ID,
		Body:           body,
		IsInternalNote: isInternalNote,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	if !isInternalNote {
		if owner, err := s.repomanager.Users(s.db).GetByID(ctx, ticket.UserID); err == nil {
			s.notifier.TicketReplied(ctx, ticket, owner, author)
		} else {
			s.logger.Warn(ctx, "owner lookup for notification failed", "ticket_id", ticket.ID, "error", err)
		}
	}

	return msg, nil
}

// ListMessages returns the thread; internal notes only for admins.
func (s *TicketService) ListMessages(ctx context.Context, viewer *models.User, ticketID int64) ([]*models.TicketMessage, error) {
	if _, err := s.GetTicket(ctx, viewer, ticketID); err != nil {
		return nil, err
	}

	msgs, err := s.repomanager.Tickets(s.db).ListMessages(ctx, ticketID, viewer.IsAdmin())
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}

	return msgs, nil
}

// TicketStats returns the admin dashboard counters.
func (s *TicketService) TicketStats(ctx context.Context) (*tickets.Stats, error) {
	stats, err := s.repomanager.Tickets(s.db).Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching ticket stats: %w", err)
	}
	return stats, nil
}
