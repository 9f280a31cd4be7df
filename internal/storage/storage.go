// Package storage abstracts where uploaded file bodies live. Two backends
// exist: a local directory for development and an S3-compatible bucket
// (MinIO in docker-compose) for deployments.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type Storage interface {
	// Save writes the object body under key, replacing any previous object.
	Save(ctx context.Context, key string, body io.Reader) error
	// Open returns the object body for streaming. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// DownloadURL returns a direct URL for the object when the backend
	// supports it (presigned GET). An empty URL with nil error means the
	// caller should stream the body through the API instead.
	DownloadURL(ctx context.Context, key string) (string, error)
}

// NewStorageKey generates a date-bucketed object key preserving the original
// file extension.
func NewStorageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("files/%d/%d/%d/%v%s", d.Year(), d.Month(), d.Day(), uuid.New(), filepath.Ext(filename))
}
