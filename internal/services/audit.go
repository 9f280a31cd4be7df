package services

import (
	"context"
	"encoding/json"

	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/repositories/audit"
)

// writeAudit records an admin mutation. Best effort: a failed audit write is
// logged and never fails the mutation it describes.
func writeAudit(ctx context.Context, repo audit.Repository, logger logging.Logger,
	actorID int64, entityType models.EntityType, entityID int64, action models.ActionType, diff any) {

	var diffJSON []byte
	if diff != nil {
		var err error
		diffJSON, err = json.Marshal(diff)
		if err != nil {
			logger.Warn(ctx, "audit diff marshal failed", "error", err)
			diffJSON = nil
		}
	}

	_, err := repo.Create(ctx, &models.AuditLog{
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Diff:       diffJSON,
	})
	if err != nil {
		logger.Warn(ctx, "audit write failed",
			"entity_type", entityType, "entity_id", entityID, "action", action, "error", err)
	}
}
