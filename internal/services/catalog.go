package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/common"
	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/repositories/catalog"
	"github.com/tgcatalog/backend/internal/repositories/repomanager"
)

// CatalogService implements the catalog of device models: public browsing
// plus admin CRUD. Deletion is always soft (deactivation) so existing files
// and tickets keep their references.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *CatalogService {
	return &CatalogService{db: db, repomanager: m, logger: logger}
}

// ModelUpdate is a partial update; nil fields are left unchanged.
type ModelUpdate struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	Category    *string `json:"category,omitempty"`
	YearFrom    *int    `json:"year_from,omitempty"`
	YearTo      *int    `json:"year_to,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ListModels returns a page of models plus the total matching count.
// Non-admin listings are forced to active models only by the handler.
func (s *CatalogService) ListModels(ctx context.Context, filter catalog.Filter, limit, offset int) ([]*models.Model, int64, error) {
	repo := s.repomanager.Catalog(s.db)
	limit, offset = clampPage(limit, offset)

	list, err := repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing models: %w", err)
	}

	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting models: %w", err)
	}

	return list, total, nil
}

func (s *CatalogService) GetModel(ctx context.Context, id int64) (*models.Model, error) {
	m, err := s.repomanager.Catalog(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("Model not found")
		}
		return nil, fmt.Errorf("error fetching model: %w", err)
	}
	return m, nil
}

func (s *CatalogService) GetModelByCode(ctx context.Context, code string) (*models.Model, error) {
	m, err := s.repomanager.Catalog(s.db).GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("Model not found")
		}
		return nil, fmt.Errorf("error fetching model: %w", err)
	}
	return m, nil
}

func (s *CatalogService) CreateModel(ctx context.Context, actor *models.User, m *models.Model) (*models.Model, error) {
	if err := validateModel(m); err != nil {
		return nil, err
	}
	m.IsActive = true

	created, err := s.repomanager.Catalog(s.db).Create(ctx, m)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, apperrors.NewConflictError("Model with this code already exists")
		}
		return nil, fmt.Errorf("error creating model: %w", err)
	}

	writeAudit(ctx, s.repomanager.Audit(s.db), s.logger,
		actor.ID, models.EntityModel, created.ID, models.ActionCreate, created)

	return created, nil
}

func (s *CatalogService) UpdateModel(ctx context.Context, actor *models.User, id int64, update ModelUpdate) (*models.Model, error) {
	repo := s.repomanager.Catalog(s.db)

	m, err := s.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}

	applyModelUpdate(m, update)
	if err := validateModel(m); err != nil {
		return nil, err
	}

	updated, err := repo.Update(ctx, m)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, apperrors.NewConflictError("Model with this code already exists")
		}
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("Model not found")
		}
		return nil, fmt.Errorf("error updating model: %w", err)
	}

	writeAudit(ctx, s.repomanager.Audit(s.db), s.logger,
		actor.ID, models.EntityModel, updated.ID, models.ActionUpdate, update)

	return updated, nil
}

// DeactivateModel hides a model from the public catalog without deleting it.
func (s *CatalogService) DeactivateModel(ctx context.Context, actor *models.User, id int64) error {
	if err := s.repomanager.Catalog(s.db).Deactivate(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperrors.NewNotFoundError("Model not found")
		}
		return fmt.Errorf("error deactivating model: %w", err)
	}

	writeAudit(ctx, s.repomanager.Audit(s.db), s.logger,
		actor.ID, models.EntityModel, id, models.ActionDelete, nil)

	return nil
}

func applyModelUpdate(m *models.Model, update ModelUpdate) {
	if update.Name != nil {
		m.Name = *update.Name
	}
	if update.Code != nil {
		m.Code = *update.Code
	}
	if update.Brand != nil {
		m.Brand = *update.Brand
	}
	if update.Category != nil {
		m.Category = *update.Category
	}
	if update.YearFrom != nil {
		m.YearFrom = *update.YearFrom
	}
	if update.YearTo != nil {
		m.YearTo = *update.YearTo
	}
	if update.Description != nil {
		m.Description = *update.Description
	}
	if update.ImageURL != nil {
		m.ImageURL = *update.ImageURL
	}
	if update.IsActive != nil {
		m.IsActive = *update.IsActive
	}
}

func validateModel(m *models.Model) error {
	if strings.TrimSpace(m.Name) == "" {
		return apperrors.NewValidationError("Model name is required")
	}
	if strings.TrimSpace(m.Code) == "" {
		return apperrors.NewValidationError("Model code is required")
	}
	if m.YearFrom != 0 && m.YearTo != 0 && m.YearTo < m.YearFrom {
		return apperrors.NewValidationError("Invalid year range")
	}
	return nil
}
