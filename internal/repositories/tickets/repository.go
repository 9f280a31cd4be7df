package tickets

import (
	"context"

	"github.com/tgcatalog/backend/internal/models"
)

// Filter narrows ticket listings. UserID is set by the service for
// non-admin callers so owners only ever see their own tickets.
type Filter struct {
	UserID     int64
	Status     models.TicketStatus
	Priority   models.TicketPriority
	AssigneeID int64
	ModelID    int64
}

// Stats is the admin dashboard aggregate.
type Stats struct {
	Total        int64
	Open         int64
	InProgress   int64
	Resolved     int64
	Closed       int64
	HighPriority int64
}

type Repository interface {
	Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	Update(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*models.Ticket, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Stats(ctx context.Context) (*Stats, error)

	CreateMessage(ctx context.Context, msg *models.TicketMessage) (*models.TicketMessage, error)
	ListMessages(ctx context.Context, ticketID int64, includeInternal bool) ([]*models.TicketMessage, error)
}
