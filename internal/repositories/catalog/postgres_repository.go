package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

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

const modelColumns = `id, name, code, brand, category, year_from, year_to, description, image_url, is_active, created_at, updated_at`

func scanModel(row interface{ Scan(dest ...any) error }) (*models.Model, error) {
	m := &models.Model{}
	var brand, category, description, imageURL sql.NullString
	var yearFrom, yearTo sql.NullInt64
	var updatedAt sql.NullTime

	err := row.Scan(&m.ID, &m.Name, &m.Code, &brand, &category, &yearFrom, &yearTo,
		&description, &imageURL, &m.IsActive, &m.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	m.Brand = brand.String
	m.Category = category.String
	m.YearFrom = int(yearFrom.Int64)
	m.YearTo = int(yearTo.Int64)
	m.Description = description.String
	m.ImageURL = imageURL.String
	if updatedAt.Valid {
		m.UpdatedAt = &updatedAt.Time
	}

	return m, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullIfZero(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

// buildWhere assembles the WHERE clause for a filter. Conditions are joined
// with AND; the text query matches name, code, brand and description
// case-insensitively, mirroring the catalog search of the original app.
func buildWhere(filter Filter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR code ILIKE %[1]s OR brand ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	if filter.Brand != "" {
		conds = append(conds, "brand = "+arg(filter.Brand))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.YearFrom != 0 {
		conds = append(conds, "year_from >= "+arg(filter.YearFrom))
	}
	if filter.YearTo != 0 {
		conds = append(conds, "year_to <= "+arg(filter.YearTo))
	}
	if filter.HasFiles != nil {
		if *filter.HasFiles {
			conds = append(conds, "EXISTS (SELECT 1 FROM files WHERE files.model_id = models.id)")
		} else {
			conds = append(conds, "NOT EXISTS (SELECT 1 FROM files WHERE files.model_id = models.id)")
		}
	}
	if filter.IsActive != nil {
		conds = append(conds, "is_active = "+arg(*filter.IsActive))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Model) (*models.Model, error) {

	query :=
		`INSERT INTO models (name, code, brand, category, year_from, year_to, description, image_url, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		m.Name, m.Code, nullIfEmpty(m.Brand), nullIfEmpty(m.Category),
		nullIfZero(m.YearFrom), nullIfZero(m.YearTo),
		nullIfEmpty(m.Description), nullIfEmpty(m.ImageURL), m.IsActive).
		Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Model, error) {
	query := `SELECT ` + modelColumns + ` FROM models WHERE id = $1`

	m, err := scanModel(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*models.Model, error) {
	query := `SELECT ` + modelColumns + ` FROM models WHERE code = $1`

	m, err := scanModel(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *models.Model) (*models.Model, error) {

	query :=
		`UPDATE models
		 SET name = $2, code = $3, brand = $4, category = $5, year_from = $6, year_to = $7,
		     description = $8, image_url = $9, is_active = $10, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	var updatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query,
		m.ID, m.Name, m.Code, nullIfEmpty(m.Brand), nullIfEmpty(m.Category),
		nullIfZero(m.YearFrom), nullIfZero(m.YearTo),
		nullIfEmpty(m.Description), nullIfEmpty(m.ImageURL), m.IsActive).
		Scan(&updatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if updatedAt.Valid {
		m.UpdatedAt = &updatedAt.Time
	}

	return m, nil
}

// Deactivate performs the soft delete the catalog uses: the row stays for
// referencing tickets, it just stops being listed.
func (r *PostgresRepository) Deactivate(ctx context.Context, id int64) error {

	res, err := r.db.ExecContext(ctx,
		`UPDATE models SET is_active = FALSE, updated_at = now() WHERE id = $1`, id)
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

func (r *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*models.Model, error) {

	where, args := buildWhere(filter)
	query := `SELECT ` + modelColumns + ` FROM models` + where +
		fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Model
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, filter Filter) (int64, error) {

	where, args := buildWhere(filter)

	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM models`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
