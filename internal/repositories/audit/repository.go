package audit

import (
	"context"

	"github.com/tgcatalog/backend/internal/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.AuditLog) (*models.AuditLog, error)
	ListByEntity(ctx context.Context, entityType models.EntityType, entityID int64, limit, offset int) ([]*models.AuditLog, error)
}
