package tickets

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

const ticketColumns = `id, user_id, model_id, subject, description, priority, status, assignee_id, created_at, updated_at, closed_at`

func scanTicket(row interface{ Scan(dest ...any) error }) (*models.Ticket, error) {
	t := &models.Ticket{}
	var modelID, assigneeID sql.NullInt64
	var updatedAt, closedAt sql.NullTime

	err := row.Scan(&t.ID, &t.UserID, &modelID, &t.Subject, &t.Description,
		&t.Priority, &t.Status, &assigneeID, &t.CreatedAt, &updatedAt, &closedAt)
	if err != nil {
		return nil, err
	}

	t.ModelID = modelID.Int64
	t.AssigneeID = assigneeID.Int64
	if updatedAt.Valid {
		t.UpdatedAt = &updatedAt.Time
	}
	if closedAt.Valid {
		t.ClosedAt = &closedAt.Time
	}

	return t, nil
}

func nullIfZero(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n != 0}
}

func buildWhere(filter Filter) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != 0 {
		conds = append(conds, "user_id = "+arg(filter.UserID))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = "+arg(filter.Priority))
	}
	if filter.AssigneeID != 0 {
		conds = append(conds, "assignee_id = "+arg(filter.AssigneeID))
	}
	if filter.ModelID != 0 {
		conds = append(conds, "model_id = "+arg(filter.ModelID))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Ticket) (*models.Ticket, error) {

	query :=
		`INSERT INTO tickets (user_id, model_id, subject, description, priority, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		t.UserID, nullIfZero(t.ModelID), t.Subject, t.Description, t.Priority, t.Status).
		Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	t, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}

func (r *PostgresRepository) Update(ctx context.Context, t *models.Ticket) (*models.Ticket, error) {

	query :=
		`UPDATE tickets
		 SET subject = $2, description = $3, priority = $4, status = $5,
		     assignee_id = $6, closed_at = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	var closedAt sql.NullTime
	if t.ClosedAt != nil {
		closedAt = sql.NullTime{Time: *t.ClosedAt, Valid: true}
	}

	var updatedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query,
		t.ID, t.Subject, t.Description, t.Priority, t.Status,
		nullIfZero(t.AssigneeID), closedAt).
		Scan(&updatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if updatedAt.Valid {
		t.UpdatedAt = &updatedAt.Time
	}

	return t, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*models.Ticket, error) {

	where, args := buildWhere(filter)
	query := `SELECT ` + ticketColumns + ` FROM tickets` + where +
		fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context, filter Filter) (int64, error) {

	where, args := buildWhere(filter)

	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM tickets`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}

// Stats aggregates the admin dashboard counters in one pass.
func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {

	query :=
		`SELECT count(*),
		        count(*) FILTER (WHERE status = 'open'),
		        count(*) FILTER (WHERE status = 'in_progress'),
		        count(*) FILTER (WHERE status = 'resolved'),
		        count(*) FILTER (WHERE status = 'closed'),
		        count(*) FILTER (WHERE priority = 'high')
		 FROM tickets
		 `

	s := &Stats{}
	err := r.db.QueryRowContext(ctx, query).
		Scan(&s.Total, &s.Open, &s.InProgress, &s.Resolved, &s.Closed, &s.HighPriority)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) CreateMessage(ctx context.Context, m *models.TicketMessage) (*models.TicketMessage, error) {

	query :=
		`INSERT INTO ticket_messages (ticket_id, author_id, body, is_internal_note)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		m.TicketID, m.AuthorID, m.Body, m.IsInternalNote).
		Scan(&m.ID, &m.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return m, nil
}

// ListMessages returns the thread in chronological order. Internal notes
// are filtered out at the SQL level for non-admin readers.
func (r *PostgresRepository) ListMessages(ctx context.Context, ticketID int64, includeInternal bool) ([]*models.TicketMessage, error) {

	query := `SELECT id, ticket_id, author_id, body, is_internal_note, created_at
		 FROM ticket_messages WHERE ticket_id = $1`
	if !includeInternal {
		query += ` AND is_internal_note = FALSE`
	}
	query += ` ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.TicketMessage
	for rows.Next() {
		m := &models.TicketMessage{}
		if err := rows.Scan(&m.ID, &m.TicketID, &m.AuthorID, &m.Body, &m.IsInternalNote, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
