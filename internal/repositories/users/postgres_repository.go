package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

const userColumns = `id, telegram_user_id, username, first_name, last_name, language_code, role, is_blocked, created_at, updated_at`

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505). First-login races on telegram_user_id land
// here and are retried by the service as the "already present" branch.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}
	var username, firstName, lastName sql.NullString
	var updatedAt sql.NullTime

	err := row.Scan(&user.ID, &user.TelegramUserID, &username, &firstName, &lastName,
		&user.LanguageCode, &user.Role, &user.IsBlocked, &user.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	user.Username = username.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}

	return user, nil
}

// nullIfEmpty keeps empty display attributes as SQL NULL, matching the
// nullable columns of the original schema.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts the user as a single atomic statement. A concurrent insert
// for the same telegram_user_id surfaces as common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (telegram_user_id, username, first_name, last_name, language_code, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.TelegramUserID, nullIfEmpty(user.Username), nullIfEmpty(user.FirstName),
		nullIfEmpty(user.LastName), user.LanguageCode, user.Role).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByTelegramID(ctx context.Context, telegramUserID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_user_id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, telegramUserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// Update persists the mutable attributes (display fields, role, blocked
// flag). telegram_user_id is immutable and never touched.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`UPDATE users
		 SET username = $2, first_name = $3, last_name = $4, language_code = $5,
		     role = $6, is_blocked = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	var updatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query,
		user.ID, nullIfEmpty(user.Username), nullIfEmpty(user.FirstName), nullIfEmpty(user.LastName),
		user.LanguageCode, user.Role, user.IsBlocked).
		Scan(&updatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}

	return user, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return total, nil
}
