package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tgcatalog/backend/internal/common"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage error: %v", err)
	}
	return s
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	key := NewStorageKey("manual.pdf")
	if !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("key %q lost extension", key)
	}

	if err := s.Save(ctx, key, strings.NewReader("body bytes")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	rc, err := s.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if string(data) != "body bytes" {
		t.Fatalf("unexpected body: %q", data)
	}
}

func TestLocalStorage_OpenMissing(t *testing.T) {
	s := newLocal(t)

	_, err := s.Open(context.Background(), "files/nope.pdf")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestLocalStorage_Delete(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	if err := s.Save(ctx, "files/a.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := s.Delete(ctx, "files/a.txt"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := s.Delete(ctx, "files/a.txt"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{"../escape", "/etc/passwd", "."} {
		if err := s.Save(ctx, key, strings.NewReader("x")); err == nil {
			t.Fatalf("Save(%q) accepted a bad key", key)
		}
	}
}

func TestLocalStorage_DownloadURLEmpty(t *testing.T) {
	s := newLocal(t)

	url, err := s.DownloadURL(context.Background(), "files/a.txt")
	if err != nil {
		t.Fatalf("DownloadURL error: %v", err)
	}
	if url != "" {
		t.Fatalf("want empty URL, got %q", url)
	}
}
