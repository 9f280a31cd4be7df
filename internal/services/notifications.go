package services

import (
	"context"
	"fmt"
	"html"

	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/models"
)

// MessageSender is the piece of the telegram package notifications need.
type MessageSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// TicketNotifier receives ticket lifecycle events. The ticket service calls
// it after the database write succeeds; implementations must not fail the
// request.
type TicketNotifier interface {
	TicketCreated(ctx context.Context, ticket *models.Ticket, owner *models.User)
	TicketStatusChanged(ctx context.Context, ticket *models.Ticket, owner *models.User, from models.TicketStatus)
	TicketReplied(ctx context.Context, ticket *models.Ticket, owner *models.User, author *models.User)
}

// NotificationService pushes ticket events to Telegram chats: admins hear
// about new tickets, owners hear about status changes and replies. Send
// failures are logged and swallowed.
type NotificationService struct {
	sender       MessageSender
	adminUserIDs []int64
	logger       logging.Logger
}

func NewNotificationService(sender MessageSender, adminUserIDs []int64, logger logging.Logger) *NotificationService {
	return &NotificationService{sender: sender, adminUserIDs: adminUserIDs, logger: logger}
}

func (s *NotificationService) TicketCreated(ctx context.Context, ticket *models.Ticket, owner *models.User) {
	s.send(ctx, owner.TelegramUserID, fmt.Sprintf("✅ Ticket #%d created: <b>%s</b>",
		ticket.ID, html.EscapeString(ticket.Subject)))

	text := fmt.Sprintf("🆕 New ticket #%d from <b>%s</b>\n<b>%s</b>",
		ticket.ID, html.EscapeString(owner.FullName()), html.EscapeString(ticket.Subject))
	if ticket.Priority == models.PriorityHigh {
		text = "❗ " + text
	}

	for _, chatID := range s.adminUserIDs {
		s.send(ctx, chatID, text)
	}
}

func (s *NotificationService) TicketStatusChanged(ctx context.Context, ticket *models.Ticket, owner *models.User, from models.TicketStatus) {
	text := fmt.Sprintf("Ticket #%d <b>%s</b>: %s → %s",
		ticket.ID, html.EscapeString(ticket.Subject), from, ticket.Status)
	s.send(ctx, owner.TelegramUserID, text)
}

func (s *NotificationService) TicketReplied(ctx context.Context, ticket *models.Ticket, owner *models.User, author *models.User) {
	if author.ID == owner.ID {
		// Owner replied; tell the admins.
		text := fmt.Sprintf("💬 Reply on ticket #%d from <b>%s</b>",
			ticket.ID, html.EscapeString(owner.FullName()))
		for _, chatID := range s.adminUserIDs {
			s.send(ctx, chatID, text)
		}
		return
	}

	text := fmt.Sprintf("💬 New reply on your ticket #%d <b>%s</b>",
		ticket.ID, html.EscapeString(ticket.Subject))
	s.send(ctx, owner.TelegramUserID, text)
}

func (s *NotificationService) send(ctx context.Context, chatID int64, text string) {
	if err := s.sender.SendMessage(ctx, chatID, text); err != nil {
		s.logger.Warn(ctx, "notification send failed", "chat_id", chatID, "error", err)
	}
}
