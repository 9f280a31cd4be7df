package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/common"
	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/repositories/repomanager"
)

// UserService implements admin user management: listing, blocking and role
// changes. Self-authentication lives in AuthService.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{db: db, repomanager: m, logger: logger}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	limit, offset = clampPage(limit, offset)
	repo := s.repomanager.Users(s.db)

	list, err := repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	return list, total, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	return u, nil
}

// SetBlocked blocks or unblocks a user. A blocked user's tokens stop
// resolving on their next request.
func (s *UserService) SetBlocked(ctx context.Context, actor *models.User, id int64, blocked bool) (*models.User, error) {
	if actor.ID == id {
		return nil, apperrors.NewValidationError("Cannot block yourself")
	}

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsBlocked == blocked {
		return u, nil
	}

	u.IsBlocked = blocked
	updated, err := s.repomanager.Users(s.db).Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	writeAudit(ctx, s.repomanager.Audit(s.db), s.logger,
		actor.ID, models.EntityUser, id, models.ActionUpdate,
		map[string]bool{"is_blocked": blocked})

	return updated, nil
}

// SetRole changes a user's role. Admins cannot change their own role, so
// the last admin cannot lock everyone out by accident.
func (s *UserService) SetRole(ctx context.Context, actor *models.User, id int64, role models.UserRole) (*models.User, error) {
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperrors.NewValidationError("Invalid role")
	}
	if actor.ID == id {
		return nil, apperrors.NewValidationError("Cannot change your own role")
	}

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role == role {
		return u, nil
	}

	u.Role = role
	updated, err := s.repomanager.Users(s.db).Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	writeAudit(ctx, s.repomanager.Audit(s.db), s.logger,
		actor.ID, models.EntityUser, id, models.ActionUpdate,
		map[string]models.UserRole{"role": role})

	return updated, nil
}
