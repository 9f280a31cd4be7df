package files

import (
	"context"

	"github.com/tgcatalog/backend/internal/models"
)

// Filter narrows file listings. ModelID 0 means all models; PublicOnly
// hides admin-only files from regular users.
type Filter struct {
	ModelID    int64
	PublicOnly bool
}

type Repository interface {
	Create(ctx context.Context, file *models.File) (*models.File, error)
	GetByID(ctx context.Context, id int64) (*models.File, error)
	Update(ctx context.Context, file *models.File) (*models.File, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*models.File, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}
