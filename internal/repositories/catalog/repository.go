package catalog

import (
	"context"

	"github.com/tgcatalog/backend/internal/models"
)

// Filter narrows catalog listings. Zero values mean "no constraint";
// pointer fields distinguish "unset" from an explicit false.
type Filter struct {
	Query    string
	Brand    string
	Category string
	YearFrom int
	YearTo   int
	HasFiles *bool
	IsActive *bool
}

type Repository interface {
	Create(ctx context.Context, model *models.Model) (*models.Model, error)
	GetByID(ctx context.Context, id int64) (*models.Model, error)
	GetByCode(ctx context.Context, code string) (*models.Model, error)
	Update(ctx context.Context, model *models.Model) (*models.Model, error)
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*models.Model, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}
