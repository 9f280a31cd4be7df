package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/services"
)

// errorBody is the envelope every failed request returns. Code is a stable
// machine-readable discriminator; clients must not parse Message.
type errorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// writeError maps service errors onto the envelope. Anything that is not a
// typed application error becomes an opaque 500.
func writeError(c *gin.Context, err error) {
	var (
		authErr     *apperrors.AuthenticationError
		authzErr    *apperrors.AuthorizationError
		notFoundErr *apperrors.NotFoundError
		valErr      *apperrors.ValidationError
		conflictErr *apperrors.ConflictError
	)

	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "Internal server error"

	switch {
	case errors.As(err, &authErr):
		status, code, message = http.StatusUnauthorized, authErr.Code(), authErr.Message
	case errors.As(err, &authzErr):
		status, code, message = http.StatusForbidden, authzErr.Code(), authzErr.Message
	case errors.As(err, &notFoundErr):
		status, code, message = http.StatusNotFound, notFoundErr.Code(), notFoundErr.Message
	case errors.As(err, &valErr):
		status, code, message = http.StatusUnprocessableEntity, valErr.Code(), valErr.Message
	case errors.As(err, &conflictErr):
		status, code, message = http.StatusBadRequest, conflictErr.Code(), conflictErr.Message
	}

	c.AbortWithStatusJSON(status, errorResponse{Error: errorBody{
		Code:       code,
		Message:    message,
		StatusCode: status,
	}})
}

type userResponse struct {
	ID             int64      `json:"id"`
	TelegramUserID int64      `json:"telegram_user_id"`
	Username       string     `json:"username"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	FullName       string     `json:"full_name"`
	LanguageCode   string     `json:"language_code"`
	Role           string     `json:"role"`
	IsBlocked      bool       `json:"is_blocked"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:             u.ID,
		TelegramUserID: u.TelegramUserID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName(),
		LanguageCode:   u.LanguageCode,
		Role:           string(u.Role),
		IsBlocked:      u.IsBlocked,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func toTokenResponse(t *services.Token) tokenResponse {
	return tokenResponse{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		ExpiresAt:   t.ExpiresAt,
	}
}

type modelResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Brand       string     `json:"brand"`
	Category    string     `json:"category"`
	YearFrom    int        `json:"year_from"`
	YearTo      int        `json:"year_to"`
	YearRange   string     `json:"year_range"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func toModelResponse(m *models.Model) modelResponse {
	return modelResponse{
		ID:          m.ID,
		Name:        m.Name,
		Code:        m.Code,
		Brand:       m.Brand,
		Category:    m.Category,
		YearFrom:    m.YearFrom,
		YearTo:      m.YearTo,
		YearRange:   m.YearRange(),
		Description: m.Description,
		ImageURL:    m.ImageURL,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type fileResponse struct {
	ID        int64      `json:"id"`
	ModelID   int64      `json:"model_id"`
	Title     string     `json:"title"`
	FileType  string     `json:"file_type"`
	SizeBytes int64      `json:"size_bytes"`
	IsPublic  bool       `json:"is_public"`
	Version   string     `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toFileResponse(f *models.File) fileResponse {
	return fileResponse{
		ID:        f.ID,
		ModelID:   f.ModelID,
		Title:     f.Title,
		FileType:  string(f.FileType),
		SizeBytes: f.SizeBytes,
		IsPublic:  f.IsPublic,
		Version:   f.Version,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

type ticketResponse struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	ModelID     int64      `json:"model_id,omitempty"`
	Subject     string     `json:"subject"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	AssigneeID  int64      `json:"assignee_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

func toTicketResponse(t *models.Ticket) ticketResponse {
	return ticketResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		ModelID:     t.ModelID,
		Subject:     t.Subject,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		AssigneeID:  t.AssigneeID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		ClosedAt:    t.ClosedAt,
	}
}

type messageResponse struct {
	ID             int64     `json:"id"`
	TicketID       int64     `json:"ticket_id"`
	AuthorID       int64     `json:"author_id"`
	Body           string    `json:"body"`
	IsInternalNote bool      `json:"is_internal_note"`
	CreatedAt      time.Time `json:"created_at"`
}

func toMessageResponse(m *models.TicketMessage) messageResponse {
	return messageResponse{
		ID:             m.ID,
		TicketID:       m.TicketID,
		AuthorID:       m.AuthorID,
		Body:           m.Body,
		IsInternalNote: m.IsInternalNote,
		CreatedAt:      m.CreatedAt,
	}
}

// listResponse is the shared paging envelope.
type listResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func toList[S, T any](src []S, total int64, limit, offset int, conv func(S) T) listResponse[T] {
	items := make([]T, 0, len(src))
	for _, s := range src {
		items = append(items, conv(s))
	}
	return listResponse[T]{Items: items, Total: total, Limit: limit, Offset: offset}
}
