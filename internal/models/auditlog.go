package models

import "time"

type EntityType string

const (
	EntityModel  EntityType = "model"
	EntityFile   EntityType = "file"
	EntityTicket EntityType = "ticket"
	EntityUser   EntityType = "user"
)

type ActionType string

const (
	ActionCreate       ActionType = "create"
	ActionUpdate       ActionType = "update"
	ActionDelete       ActionType = "delete"
	ActionAssign       ActionType = "assign"
	ActionStatusChange ActionType = "status_change"
)

// AuditLog records an admin mutation. Diff holds a JSON document describing
// the change; its shape is owned by the service that writes it.
type AuditLog struct {
	ID         int64
	ActorID    int64
	EntityType EntityType
	EntityID   int64
	Action     ActionType
	Diff       []byte
	CreatedAt  time.Time
}
