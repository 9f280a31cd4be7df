package tickets

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/tgcatalog/backend/internal/common"
	"github.com/tgcatalog/backend/internal/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func ticketRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "model_id", "subject", "description", "priority",
		"status", "assignee_id", "created_at", "updated_at", "closed_at",
	}).AddRow(int64(7), int64(1), int64(3), "Pump leaks", "details",
		"high", "open", nil, time.Now(), nil, nil)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+tickets\s*\(user_id,.*RETURNING\s+id,\s*created_at`).
		WithArgs(int64(1), sql.NullInt64{Int64: 3, Valid: true}, "Pump leaks", "details",
			models.PriorityHigh, models.StatusOpen).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	tk := &models.Ticket{UserID: 1, ModelID: 3, Subject: "Pump leaks", Description: "details",
		Priority: models.PriorityHigh, Status: models.StatusOpen}
	got, err := repo.Create(context.Background(), tk)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("unexpected ticket: %+v", got)
	}
}

func TestCreate_WithoutModel(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+tickets`).
		WithArgs(int64(1), sql.NullInt64{}, "General question", "details",
			models.PriorityNormal, models.StatusOpen).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(8), time.Now()))

	tk := &models.Ticket{UserID: 1, Subject: "General question", Description: "details",
		Priority: models.PriorityNormal, Status: models.StatusOpen}
	if _, err := repo.Create(context.Background(), tk); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+tickets\s+WHERE\s+id`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList_OwnerScoped(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+tickets\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+id\s+DESC`).
		WithArgs(int64(1), 20, 0).
		WillReturnRows(ticketRows())

	list, err := repo.List(context.Background(), Filter{UserID: 1}, 20, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 1 || list[0].Subject != "Pump leaks" {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list[0].AssigneeID != 0 {
		t.Fatalf("want zero assignee for NULL column, got %d", list[0].AssigneeID)
	}
}

func TestBuildWhere_AllConditions(t *testing.T) {
	t.Parallel()

	where, args := buildWhere(Filter{
		UserID:     1,
		Status:     models.StatusOpen,
		Priority:   models.PriorityHigh,
		AssigneeID: 2,
		ModelID:    3,
	})

	want := " WHERE user_id = $1 AND status = $2 AND priority = $3 AND assignee_id = $4 AND model_id = $5"
	if where != want {
		t.Fatalf("unexpected where clause: %q", where)
	}
	if len(args) != 5 {
		t.Fatalf("want 5 args, got %d", len(args))
	}
}

func TestStats_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+count\(\*\),.*FROM\s+tickets`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "open", "in_progress", "resolved", "closed", "high"}).
			AddRow(int64(10), int64(4), int64(2), int64(1), int64(3), int64(5)))

	s, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if s.Total != 10 || s.Open != 4 || s.HighPriority != 5 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestListMessages_FiltersInternalNotes(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+ticket_messages\s+WHERE\s+ticket_id\s*=\s*\$1\s+AND\s+is_internal_note\s*=\s*FALSE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "ticket_id", "author_id", "body", "is_internal_note", "created_at",
		}).AddRow(int64(1), int64(7), int64(1), "any updates?", false, time.Now()))

	msgs, err := repo.ListMessages(context.Background(), 7, false)
	if err != nil {
		t.Fatalf("ListMessages error: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "any updates?" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}
