// Package services contains server-side business logic. This file implements
// AuthService: exchanging verified Telegram launch payloads for stored users
// and signed access tokens, and resolving bearer tokens back to users.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/auth"
	"github.com/tgcatalog/backend/internal/common"
	"github.com/tgcatalog/backend/internal/config"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/repositories/repomanager"
	"github.com/tgcatalog/backend/internal/telegram"
)

// Token is an issued access token together with its absolute expiry.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// InitDataVerifier is the piece of the telegram package AuthService needs;
// an interface so tests can substitute principals without signing payloads.
type InitDataVerifier interface {
	Verify(initData string) (*telegram.Principal, error)
}

// AuthService authenticates Mini App users:
//   - AuthenticateTelegram: verify init data, upsert the user, mint a token
//   - GetCurrentUser: resolve a bearer token to a live, non-blocked user
//   - RequireAdmin / RequireUser: authorization gates for handlers
type AuthService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	verifier                    InitDataVerifier
	config                      *config.Config
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

// NewAuthService constructs an AuthService using repositories and config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, verifier InitDataVerifier, cfg *config.Config) *AuthService {
	return &AuthService{
		db:                          db,
		repomanager:                 m,
		verifier:                    verifier,
		config:                      cfg,
		jwtSecret:                   []byte(cfg.JWTSecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
	}
}

// AuthenticateTelegram verifies the launch payload and maps the embedded
// Telegram identity to a stored user, creating it on first login and
// refreshing display attributes on subsequent ones. Login is idempotent:
// repeating it with the same payload yields the same user.
func (s *AuthService) AuthenticateTelegram(ctx context.Context, initData string) (*models.User, *Token, error) {
	principal, err := s.verifier.Verify(initData)
	if err != nil {
		return nil, nil, err
	}

	if principal.TelegramUserID == 0 {
		return nil, nil, apperrors.NewAuthenticationError("Missing telegram user ID")
	}

	user, err := s.upsertUser(ctx, principal)
	if err != nil {
		return nil, nil, err
	}

	token, err := s.CreateAccessToken(user)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

func (s *AuthService) upsertUser(ctx context.Context, principal *telegram.Principal) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByTelegramID(ctx, principal.TelegramUserID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error fetching user: %w", err)
		}

		created, err := repo.Create(ctx, s.newUserFromPrincipal(principal))
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("error creating user: %w", err)
		}

		// Lost the race to a concurrent first login. Re-fetch and fall
		// through to the update branch.
		user, err = repo.GetByTelegramID(ctx, principal.TelegramUserID)
		if err != nil {
			return nil, fmt.Errorf("error fetching user: %w", err)
		}
	}

	if s.applyPrincipal(user, principal) {
		updated, err := repo.Update(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("error updating user: %w", err)
		}
		return updated, nil
	}

	return user, nil
}

func (s *AuthService) newUserFromPrincipal(principal *telegram.Principal) *models.User {
	role := models.RoleUser
	if s.config.IsAdminUserID(principal.TelegramUserID) {
		role = models.RoleAdmin
	}
	return &models.User{
		TelegramUserID: principal.TelegramUserID,
		Username:       principal.Username,
		FirstName:      principal.FirstName,
		LastName:       principal.LastName,
		LanguageCode:   principal.LanguageCode,
		Role:           role,
	}
}

// applyPrincipal refreshes the stored user from the verified identity and
// reports whether anything changed. Empty incoming display fields do not
// erase stored values. Allow-list promotion happens on every login; demotion
// only when SyncRoleFromAllowList is set.
func (s *AuthService) applyPrincipal(user *models.User, principal *telegram.Principal) bool {
	changed := false

	set := func(dst *string, v string) {
		if v != "" && *dst != v {
			*dst = v
			changed = true
		}
	}
	set(&user.Username, principal.Username)
	set(&user.FirstName, principal.FirstName)
	set(&user.LastName, principal.LastName)
	set(&user.LanguageCode, principal.LanguageCode)

	allowed := s.config.IsAdminUserID(principal.TelegramUserID)
	if allowed && user.Role != models.RoleAdmin {
		user.Role = models.RoleAdmin
		changed = true
	}
	if !allowed && user.Role == models.RoleAdmin && s.config.SyncRoleFromAllowList {
		user.Role = models.RoleUser
		changed = true
	}

	return changed
}

// CreateAccessToken mints a signed bearer token for the user.
func (s *AuthService) CreateAccessToken(user *models.User) (*Token, error) {
	tokenString, expiresAt, err := auth.GenerateToken(user.ID, user.TelegramUserID, string(user.Role), s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &Token{
		AccessToken: tokenString,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// VerifyToken validates a bearer token string and returns its claims.
func (s *AuthService) VerifyToken(tokenString string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, apperrors.NewAuthenticationError("Invalid token")
	}
	return claims, nil
}

// GetCurrentUser resolves a bearer token to its stored user. The user row is
// re-read on every call so blocks and role changes take effect mid-session.
func (s *AuthService) GetCurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	userID, ok := claims.UserID()
	if !ok {
		return nil, apperrors.NewAuthenticationError("Invalid token payload")
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewAuthenticationError("User not found")
		}
		return nil, fmt.Errorf("error fetching user: %w", err)
	}

	if user.IsBlocked {
		return nil, apperrors.NewAuthenticationError("User is blocked")
	}

	return user, nil
}

// RequireUser gates endpoints available to any authenticated, active user.
func (s *AuthService) RequireUser(user *models.User) error {
	if user == nil {
		return apperrors.NewAuthenticationError("Invalid token")
	}
	if user.IsBlocked {
		return apperrors.NewAuthenticationError("User is blocked")
	}
	return nil
}

// RequireAdmin gates admin-only endpoints.
func (s *AuthService) RequireAdmin(user *models.User) error {
	if err := s.RequireUser(user); err != nil {
		return err
	}
	if !user.IsAdmin() {
		return apperrors.NewAuthorizationError("Admin access required")
	}
	return nil
}
