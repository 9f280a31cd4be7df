package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tgcatalog/backend/internal/apperrors"
	"github.com/tgcatalog/backend/internal/models"
)

func newFileService(t *testing.T, maxSize int64) (*FileService, *fakeManager, *memStorage) {
	t.Helper()
	m := &fakeManager{
		users:   newMemUsersRepo(),
		catalog: newMemCatalogRepo(),
		files:   newMemFilesRepo(),
		audit:   newMemAuditRepo(),
	}
	st := newMemStorage()
	return NewFileService(nil, m, st, maxSize, nopLogger{}), m, st
}

func seedModel(t *testing.T, m *fakeManager) *models.Model {
	t.Helper()
	created, err := m.catalog.Create(context.Background(), &models.Model{Name: "Washer", Code: "WX-200", IsActive: true})
	if err != nil {
		t.Fatalf("seed model error: %v", err)
	}
	return created
}

func TestUploadFile_Success(t *testing.T) {
	svc, m, st := newFileService(t, 1<<20)
	ctx := context.Background()
	admin := seedUser(t, m, models.RoleAdmin)
	model := seedModel(t, m)

	f, err := svc.UploadFile(ctx, admin, UploadFileParams{
		ModelID:  model.ID,
		Filename: "manual.pdf",
		IsPublic: true,
		Size:     10,
		Body:     strings.NewReader("0123456789"),
	})
	if err != nil {
		t.Fatalf("UploadFile error: %v", err)
	}
	if f.FileType != models.FileTypePDF || f.Title != "manual.pdf" {
		t.Fatalf("unexpected file: %+v", f)
	}
	if _, ok := st.objects[f.StorageKey]; !ok {
		t.Fatalf("blob missing for key %q", f.StorageKey)
	}
}

func TestUploadFile_TooLarge(t *testing.T) {
	svc, m, _ := newFileService(t, 5)
	admin := seedUser(t, m, models.RoleAdmin)
	model := seedModel(t, m)

	_, err := svc.UploadFile(context.Background(), admin, UploadFileParams{
		ModelID: model.ID, Filename: "a.bin", Size: 6, Body: strings.NewReader("123456"),
	})
	var valErr *apperrors.ValidationError
	if !errors.As(err, &valErr) || valErr.Message != "File too large" {
		t.Fatalf("want File too large, got %v", err)
	}
}

func TestUploadFile_UnknownModel(t *testing.T) {
	svc, m, _ := newFileService(t, 1<<20)
	admin := seedUser(t, m, models.RoleAdmin)

	_, err := svc.UploadFile(context.Background(), admin, UploadFileParams{
		ModelID: 99, Filename: "a.pdf", Size: 1, Body: strings.NewReader("x"),
	})
	var nfErr *apperrors.NotFoundError
	if !errors.As(err, &nfErr) || nfErr.Message != "Model not found" {
		t.Fatalf("want Model not found, got %v", err)
	}
}

func TestGetFile_PrivateInvisibleToUsers(t *testing.T) {
	svc, m, _ := newFileService(t, 1<<20)
	ctx := context.Background()
	admin := seedUser(t, m, models.RoleAdmin)
	user := seedUser(t, m, models.RoleUser)
	model := seedModel(t, m)

	f, err := svc.UploadFile(ctx, admin, UploadFileParams{
		ModelID: model.ID, Filename: "internal.pdf", IsPublic: false, Size: 1, Body: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("UploadFile error: %v", err)
	}

	if _, err := svc.GetFile(ctx, admin, f.ID); err != nil {
		t.Fatalf("admin GetFile error: %v", err)
	}

	_, err = svc.GetFile(ctx, user, f.ID)
	var nfErr *apperrors.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("want NotFoundError for private file, got %v", err)
	}
}

func TestDownloadFile_StreamsWhenNoURL(t *testing.T) {
	svc, m, _ := newFileService(t, 1<<20)
	ctx := context.Background()
	admin := seedUser(t, m, models.RoleAdmin)
	model := seedModel(t, m)

	f, err := svc.UploadFile(ctx, admin, UploadFileParams{
		ModelID: model.ID, Filename: "manual.pdf", IsPublic: true, Size: 4, Body: strings.NewReader("body"),
	})
	if err != nil {
		t.Fatalf("UploadFile error: %v", err)
	}

	dl, err := svc.DownloadFile(ctx, admin, f.ID)
	if err != nil {
		t.Fatalf("DownloadFile error: %v", err)
	}
	if dl.URL != "" || dl.Body == nil {
		t.Fatalf("expected streamed body, got %+v", dl)
	}
	defer dl.Body.Close()

	data, _ := io.ReadAll(dl.Body)
	if string(data) != "body" {
		t.Fatalf("unexpected body: %q", data)
	}
}

func TestDeleteFile_RemovesRowAndBlob(t *testing.T) {
	svc, m, st := newFileService(t, 1<<20)
	ctx := context.Background()
	admin := seedUser(t, m, models.RoleAdmin)
	model := seedModel(t, m)

	f, err := svc.UploadFile(ctx, admin, UploadFileParams{
		ModelID: model.ID, Filename: "manual.pdf", IsPublic: true, Size: 1, Body: strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("UploadFile error: %v", err)
	}

	if err := svc.DeleteFile(ctx, admin, f.ID); err != nil {
		t.Fatalf("DeleteFile error: %v", err)
	}
	if _, ok := st.objects[f.StorageKey]; ok {
		t.Fatal("blob not deleted")
	}

	var nfErr *apperrors.NotFoundError
	if _, err := svc.GetFile(ctx, admin, f.ID); !errors.As(err, &nfErr) {
		t.Fatalf("want NotFoundError after delete, got %v", err)
	}
}

func TestListFiles_PublicOnlyForUsers(t *testing.T) {
	svc, m, _ := newFileService(t, 1<<20)
	ctx := context.Background()
	admin := seedUser(t, m, models.RoleAdmin)
	user := seedUser(t, m, models.RoleUser)
	model := seedModel(t, m)

	for _, public := range []bool{true, false} {
		_, err := svc.UploadFile(ctx, admin, UploadFileParams{
			ModelID: model.ID, Filename: "a.pdf", IsPublic: public, Size: 1, Body: strings.NewReader("x"),
		})
		if err != nil {
			t.Fatalf("UploadFile error: %v", err)
		}
	}

	_, total, err := svc.ListFiles(ctx, user, model.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListFiles error: %v", err)
	}
	if total != 1 {
		t.Fatalf("user should see 1 public file, got %d", total)
	}

	_, total, err = svc.ListFiles(ctx, admin, model.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListFiles error: %v", err)
	}
	if total != 2 {
		t.Fatalf("admin should see 2 files, got %d", total)
	}
}
