package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestMemoryStore_UploadGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	url, err := store.Upload(ctx, "reports/q1.pdf", strings.NewReader("pdf bytes"), "application/pdf")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if url == "" {
		t.Error("Expected URL to be returned")
	}

	rc, err := store.Get(ctx, "reports/q1.pdf")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(content) != "pdf bytes" {
		t.Errorf("Expected 'pdf bytes', got '%s'", string(content))
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_Exists(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	exists, err := store.Exists(ctx, "doc.pdf")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected document to not exist")
	}

	if _, err := store.Upload(ctx, "doc.pdf", strings.NewReader("data"), "application/pdf"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	exists, err = store.Exists(ctx, "doc.pdf")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Expected document to exist")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Upload(ctx, "doc.pdf", strings.NewReader("data"), "application/pdf"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if err := store.Delete(ctx, "doc.pdf"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "doc.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryStore_List(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"in/one.pdf", "in/two.pdf", "combined/out.pdf"} {
		if _, err := store.Upload(ctx, name, strings.NewReader("data"), "application/pdf"); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
	}

	docs, err := store.List(ctx, "in/")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("Expected 2 documents under in/, got %d", len(docs))
	}

	all, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 documents, got %d", len(all))
	}
}
