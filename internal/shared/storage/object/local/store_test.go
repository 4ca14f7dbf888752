package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lbs-connect/internal/shared/storage/object"
)

func TestPutOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	n, err := store.Put(ctx, "user-1/1700000000000.pdf", "application/pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != int64(len("%PDF-1.4 body")) {
		t.Fatalf("unexpected size %d", n)
	}

	rc, err := store.Open(ctx, "user-1/1700000000000.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestOpenMissingIsNotFound(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "user-1/missing.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"../etc/passwd", "..", ""} {
		if _, err := store.Put(context.Background(), key, "text/plain", strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestReadAllEnforcesLimit(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	if _, err := store.Put(ctx, "u/big.pdf", "application/pdf", strings.NewReader(strings.Repeat("a", 32))); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := object.ReadAll(ctx, store, "u/big.pdf", 16); err == nil {
		t.Fatalf("expected size limit error")
	}
	data, err := object.ReadAll(ctx, store, "u/big.pdf", 64)
	if err != nil || len(data) != 32 {
		t.Fatalf("unexpected read: %d %v", len(data), err)
	}
}

func TestPutOverwritesWithoutLeftovers(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()
	for _, body := range []string{"first", "second"} {
		if _, err := store.Put(ctx, "u/cv.pdf", "application/pdf", strings.NewReader(body)); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	data, err := object.ReadAll(ctx, store, "u/cv.pdf", 64)
	if err != nil || string(data) != "second" {
		t.Fatalf("unexpected read %q %v", data, err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "u"))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the stored file, got %d entries", len(entries))
	}
}
