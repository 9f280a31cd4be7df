package models

import "time"

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityNormal TicketPriority = "normal"
	PriorityHigh   TicketPriority = "high"
)

type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

// Ticket is a support request. UserID is the owner; AssigneeID is the admin
// working on it (0 when unassigned). ClosedAt is set when the ticket first
// transitions into a terminal status.
type Ticket struct {
	ID          int64
	UserID      int64
	ModelID     int64
	Subject     string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	AssigneeID  int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	ClosedAt    *time.Time
}

func (t *Ticket) IsOpen() bool {
	return t.Status == StatusOpen || t.Status == StatusInProgress
}

func (t *Ticket) IsClosed() bool {
	return t.Status == StatusResolved || t.Status == StatusClosed
}

// TicketMessage is a single message in a ticket thread. Internal notes are
// visible to admins only.
type TicketMessage struct {
	ID             int64
	TicketID       int64
	AuthorID       int64
	Body           string
	IsInternalNote bool
	CreatedAt      time.Time
}
