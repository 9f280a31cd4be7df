package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/tgcatalog/backend/internal/common"
	"github.com/tgcatalog/backend/internal/logging"
	"github.com/tgcatalog/backend/internal/models"
	"github.com/tgcatalog/backend/internal/repositories/catalog"
	"github.com/tgcatalog/backend/internal/repositories/files"
	"github.com/tgcatalog/backend/internal/repositories/tickets"
)

// nopLogger satisfies logging.Logger for services under test.
type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (l nopLogger) With(args ...any) logging.Logger                  { return l }

// fakeNotifier records ticket events instead of hitting Telegram.
type fakeNotifier struct {
	mu       sync.Mutex
	created  []int64
	statuses []models.TicketStatus
	replies  []int64
}

func (n *fakeNotifier) TicketCreated(ctx context.Context, t *models.Ticket, owner *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, t.ID)
}

func (n *fakeNotifier) TicketStatusChanged(ctx context.Context, t *models.Ticket, owner *models.User, from models.TicketStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, t.Status)
}

func (n *fakeNotifier) TicketReplied(ctx context.Context, t *models.Ticket, owner *models.User, author *models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replies = append(n.replies, t.ID)
}

// memStorage is an in-memory storage.Storage.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	url     string
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Save(ctx context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *memStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return common.ErrorNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *memStorage) DownloadURL(ctx context.Context, key string) (string, error) {
	return s.url, nil
}

type memCatalogRepo struct {
	mu   sync.Mutex
	seq  int64
	byID map[int64]*models.Model
}

func newMemCatalogRepo() *memCatalogRepo {
	return &memCatalogRepo{byID: map[int64]*models.Model{}}
}

func (r *memCatalogRepo) Create(ctx context.Context, m *models.Model) (*models.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Code == m.Code {
			return nil, common.ErrorAlreadyExists
		}
	}
	r.seq++
	cp := *m
	cp.ID = r.seq
	cp.CreatedAt = time.Now()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memCatalogRepo) GetByID(ctx context.Context, id int64) (*models.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *m
	return &out, nil
}

func (r *memCatalogRepo) GetByCode(ctx context.Context, code string) (*models.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.byID {
		if m.Code == code {
			out := *m
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memCatalogRepo) Update(ctx context.Context, m *models.Model) (*models.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[m.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	for _, existing := range r.byID {
		if existing.Code == m.Code && existing.ID != m.ID {
			return nil, common.ErrorAlreadyExists
		}
	}
	now := time.Now()
	cp := *m
	cp.UpdatedAt = &now
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memCatalogRepo) Deactivate(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	m.IsActive = false
	return nil
}

func (r *memCatalogRepo) List(ctx context.Context, filter catalog.Filter, limit, offset int) ([]*models.Model, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Model
	for _, m := range r.byID {
		if filter.IsActive != nil && m.IsActive != *filter.IsActive {
			continue
		}
		out := *m
		result = append(result, &out)
	}
	return result, nil
}

func (r *memCatalogRepo) Count(ctx context.Context, filter catalog.Filter) (int64, error) {
	list, _ := r.List(ctx, filter, 0, 0)
	return int64(len(list)), nil
}

type memTicketsRepo struct {
	mu       sync.Mutex
	seq      int64
	msgSeq   int64
	byID     map[int64]*models.Ticket
	messages []*models.TicketMessage
}

func newMemTicketsRepo() *memTicketsRepo {
	return &memTicketsRepo{byID: map[int64]*models.Ticket{}}
}

func (r *memTicketsRepo) Create(ctx context.Context, t *models.Ticket) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *t
	cp.ID = r.seq
	cp.CreatedAt = time.Now()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memTicketsRepo) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *t
	return &out, nil
}

func (r *memTicketsRepo) Update(ctx context.Context, t *models.Ticket) (*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	now := time.Now()
	cp := *t
	cp.UpdatedAt = &now
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memTicketsRepo) List(ctx context.Context, filter tickets.Filter, limit, offset int) ([]*models.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.Ticket
	for _, t := range r.byID {
		if filter.UserID != 0 && t.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out := *t
		result = append(result, &out)
	}
	return result, nil
}

func (r *memTicketsRepo) Count(ctx context.Context, filter tickets.Filter) (int64, error) {
	list, _ := r.List(ctx, filter, 0, 0)
	return int64(len(list)), nil
}

func (r *memTicketsRepo) Stats(ctx context.Context) (*tickets.Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &tickets.Stats{}
	for _, t := range r.byID {
		s.Total++
		switch t.Status {
		case models.StatusOpen:
			s.Open++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusResolved:
			s.Resolved++
		case models.StatusClosed:
			s.Closed++
		}
		if t.Priority == models.PriorityHigh {
			s.HighPriority++
		}
	}
	return s, nil
}

func (r *memTicketsRepo) CreateMessage(ctx context.Context, m *models.TicketMessage) (*models.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgSeq++
	cp := *m
	cp.ID = r.msgSeq
	cp.CreatedAt = time.Now()
	r.messages = append(r.messages, &cp)
	out := cp
	return &out, nil
}

func (r *memTicketsRepo) ListMessages(ctx context.Context, ticketID int64, includeInternal bool) ([]*models.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.TicketMessage
	for _, m := range r.messages {
		if m.TicketID != ticketID {
			continue
		}
		if m.IsInternalNote && !includeInternal {
			continue
		}
		out := *m
		result = append(result, &out)
	}
	return result, nil
}

type memFilesRepo struct {
	mu   sync.Mutex
	seq  int64
	byID map[int64]*models.File
}

func newMemFilesRepo() *memFilesRepo {
	return &memFilesRepo{byID: map[int64]*models.File{}}
}

func (r *memFilesRepo) Create(ctx context.Context, f *models.File) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *f
	cp.ID = r.seq
	cp.CreatedAt = time.Now()
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memFilesRepo) GetByID(ctx context.Context, id int64) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *f
	return &out, nil
}

func (r *memFilesRepo) Update(ctx context.Context, f *models.File) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[f.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	now := time.Now()
	cp := *f
	cp.UpdatedAt = &now
	r.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memFilesRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memFilesRepo) List(ctx context.Context, filter files.Filter, limit, offset int) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.File
	for _, f := range r.byID {
		if filter.ModelID != 0 && f.ModelID != filter.ModelID {
			continue
		}
		if filter.PublicOnly && !f.IsPublic {
			continue
		}
		out := *f
		result = append(result, &out)
	}
	return result, nil
}

func (r *memFilesRepo) Count(ctx context.Context, filter files.Filter) (int64, error) {
	list, _ := r.List(ctx, filter, 0, 0)
	return int64(len(list)), nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	seq     int64
	entries []*models.AuditLog
}

func newMemAuditRepo() *memAuditRepo { return &memAuditRepo{} }

func (r *memAuditRepo) Create(ctx context.Context, e *models.AuditLog) (*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cp := *e
	cp.ID = r.seq
	cp.CreatedAt = time.Now()
	r.entries = append(r.entries, &cp)
	out := cp
	return &out, nil
}

func (r *memAuditRepo) ListByEntity(ctx context.Context, entityType models.EntityType, entityID int64, limit, offset int) ([]*models.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.AuditLog
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out := *e
			result = append(result, &out)
		}
	}
	return result, nil
}
