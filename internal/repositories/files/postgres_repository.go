package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tgcatalog/backend/internal/common"
	"github.com/tgcatalog/backend/internal/dbx"
	"github.com/tgcatalog/backend/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const fileColumns = `id, model_id, title, file_type, storage_key, size_bytes, is_public, version, created_at, updated_at`

func scanFile(row interface{ Scan(dest ...any) error }) (*models.File, error) {
	f := &models.File{}
	var version sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(&f.ID, &f.ModelID, &f.Title, &f.FileType, &f.StorageKey,
		&f.SizeBytes, &f.IsPublic, &version, &f.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	f.Version = version.String
	if updatedAt.Valid {
		f.UpdatedAt = &updatedAt.Time
	}

	return f, nil
}

func (r *PostgresRepository) Create(ctx context.Context, f *models.File) (*models.File, error) {

	query :=
		`INSERT INTO files (model_id, title, file_type, storage_key, size_bytes, is_public, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		f.ModelID, f.Title, f.FileType, f.StorageKey, f.SizeBytes, f.IsPublic,
		sql.NullString{String: f.Version, Valid: f.Version != ""}).
		Scan(&f.ID, &f.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	f, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return f, nil
}

func (r *PostgresRepository) Update(ctx context.Context, f *models.File) (*models.File, error) {

	query :=
		`UPDATE files
		 SET title = $2, is_public = $3, version = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	var updatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query,
		f.ID, f.Title, f.IsPublic,
		sql.NullString{String: f.Version, Valid: f.Version != ""}).
		Scan(&updatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if updatedAt.Valid {
		f.UpdatedAt = &updatedAt.Time
	}

	return f, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {

	res, err := r.db.ExecContext(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func buildWhere(filter Filter) (string, []any) {
	var conds []string
	var args []any

	if filter.ModelID != 0 {
		args = append(args, filter.ModelID)
		conds = append(conds, fmt.Sprintf("model_id = $%d", len(args)))
	}
	if filter.PublicOnly {
		conds = append(conds, "is_public = TRUE")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns files matching the filter.
func (r *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*models.File, error) {

	where, args := buildWhere(filter)
	query := `SELECT ` + fileColumns + ` FROM files` + where +
		fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, filter Filter) (int64, error) {

	where, args := buildWhere(filter)

	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM files`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}
