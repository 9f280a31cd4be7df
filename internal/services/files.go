package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/common"
	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/repositories/files"
	"github.com/tgcatalog/backend/internal/repositories/repomanager"
	"github.com/tgcatalog/backend/internal/storage"
)

// FileService implements model attachments: admin uploads, metadata CRUD
// and downloads. Blob bodies live in a storage backend; only metadata is in
// the database.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     storage.Storage
	maxFileSize int64
	logger      logging.Logger
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, st storage.Storage, maxFileSize int64, logger logging.Logger) *FileService {
	return &FileService{db: db, repomanager: m, storage: st, maxFileSize: maxFileSize, logger: logger}
}

type UploadFileParams struct {
	ModelID  int64
	Filename string
	Title    string
	Version  string
	IsPublic bool
	Size     int64
	Body     io.Reader
}

// FileUpdate is a partial metadata update; the blob itself is immutable.
type FileUpdate struct {
	Title    *string `json:"title,omitempty"`
	IsPublic *bool   `json:"is_public,omitempty"`
	Version  *string `json:"version,omitempty"`
}

// Download is either a redirect URL (presigned GET) or a body to stream,
// never both.
type Download struct {
	File *models.File
	URL  string
	Body io.ReadCloser
}

// UploadFile stores the blob and creates the metadata row. If the row
// insert fails the blob is removed again.
func (s *FileService) UploadFile(ctx context.Context, actor *models.User, params UploadFileParams) (*models.File, error) {
	if params.Size <= 0 {
		return nil, apperrors.NewValidationError("File is empty")
	}
	if params.Size > s.maxFileSize {
		return nil, apperrors.NewValidationError("File too large")
	}
	if strings.TrimSpace(params.Filename) == "" {
		return nil, apperrors.NewValidationError("Filename is required")
	}

	if _, err := s.repomanager.Catalog(s.db).GetByID(ctx, params.ModelID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("Model not found")
		}
		return nil, fmt.Errorf("error fetching model: %w", err)
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = params.Filename
	}

	key := storage.NewStorageKey(params.Filename)

	// Cap the read at the declared size; a lying client fails the size
	// check on the metadata row, not the disk.
	if err := s.storage.Save(ctx, key, io.LimitReader(params.Body, s.maxFileSize+1)); err != nil {
		return nil, fmt.Errorf("error storing file: %w", err)
	}

	created, err := s.repomanager.Files(s.db).Create(ctx, &models.File{
		ModelID:    params.ModelID,
		Title:      title,
		FileType:   models.FileTypeFromName(params.Filename),
		StorageKey: key,
		SizeBytes:  params.Size,
		IsPublic:   params.IsPublic,
		Version:    params.Version,
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Warn(ctx, "orphaned blob cleanup failed", "storage_key", key, "error", delErr)
		}
		return nil, fmt.Errorf("error creating file: %w", err)
	}

	writeAudit(ctx, s.repomanager.Audit(s.db), s.logger,
		actor.ID, models.EntityFile, created.ID, models.ActionCreate, created)

	return created, nil
}

// GetFile returns metadata. Non-public files are invisible to regular users.
func (s *FileService) GetFile(ctx context.Context, viewer *models.User, id int64) (*models.File, error) {
	f, err := s.repomanager.Files(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("File not found")
		}
		return nil, fmt.Errorf("error fetching file: %w", err)
	}

	if !f.IsPublic && !viewer.IsAdmin() {
		return nil, apperrors.NewNotFoundError("File not found")
	}

	return f, nil
}

// DownloadFile resolves a download: a presigned URL when the backend can
// mint one, otherwise an open body the handler streams and closes.
func (s *FileService) DownloadFile(ctx context.Context, viewer *models.User, id int64) (*Download, error) {
	f, err := s.GetFile(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.DownloadURL(ctx, f.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("error presigning download: %w", err)
	}
	if url != "" {
		return &Download{File: f, URL: url}, nil
	}

	body, err := s.storage.Open(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("File not found")
		}
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	return &Download{File: f, Body: body}, nil
}

// ListFiles pages file metadata. Non-admin viewers only see public files.
func (s *FileService) ListFiles(ctx context.Context, viewer *models.User, modelID int64, limit, offset int) ([]*models.File, int64, error) {
	filter := files.Filter{ModelID: modelID, PublicOnly: !viewer.IsAdmin()}
	limit, offset = clampPage(limit, offset)

	repo := s.repomanager.Files(s.db)
	list, err := repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing files: %w", err)
	}

	total, err := repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting files: %w", err)
	}

	return list, total, nil
}

func (s *FileService) UpdateFile(ctx context.Context, actor *models.User, id int64, update FileUpdate) (*models.File, error) {
	repo := s.repomanager.Files(s.db)

	f, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("File not found")
		}
		return nil, fmt.Errorf("error fetching file: %w", err)
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, apperrors.NewValidationError("File title is required")
		}
		f.Title = *update.Title
	}
	if update.IsPublic != nil {
		f.IsPublic = *update.IsPublic
	}
	if update.Version != nil {
		f.Version = *update.Version
	}

	updated, err := repo.Update(ctx, f)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, apperrors.NewNotFoundError("File not found")
		}
		return nil, fmt.Errorf("error updating file: %w", err)
	}

	writeAudit(ctx, s.repomanager.Audit(s.db), s.logger,
		actor.ID, models.EntityFile, updated.ID, models.ActionUpdate, update)

	return updated, nil
}

// DeleteFile removes the metadata row first, then the blob. A leftover blob
// is only an audit trail problem; a dangling row would be a broken link.
func (s *FileService) DeleteFile(ctx context.Context, actor *models.User, id int64) error {
	repo := s.repomanager.Files(s.db)

	f, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperrors.NewNotFoundError("File not found")
		}
		return fmt.Errorf("error fetching file: %w", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return apperrors.NewNotFoundError("File not found")
		}
		return fmt.Errorf("error deleting file: %w", err)
	}

	if err := s.storage.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Warn(ctx, "blob delete failed", "storage_key", f.StorageKey, "error", err)
	}

	writeAudit(ctx, s.repomanager.Audit(s.db), s.logger,
		actor.ID, models.EntityFile, id, models.ActionDelete, nil)

	return nil
}
