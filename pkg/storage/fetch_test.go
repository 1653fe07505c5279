package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yourorg/pdf-combine-kit/pkg/utils"
)

func TestFetch(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Upload(ctx, "docs/report.pdf", strings.NewReader("report body"), "application/pdf"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	dir := t.TempDir()
	path, err := Fetch(ctx, store, utils.DefaultRetryConfig(), "docs/report.pdf", dir)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if filepath.Base(path) != "report.pdf" {
		t.Errorf("Expected local file named report.pdf, got %s", filepath.Base(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "report body" {
		t.Errorf("Expected 'report body', got '%s'", string(content))
	}
}

func TestFetch_Missing(t *testing.T) {
	store := NewMemoryStore()

	_, err := Fetch(context.Background(), store, utils.DefaultRetryConfig(), "missing.pdf", t.TempDir())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStage(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for name, body := range map[string]string{
		"in/first.pdf":  "first body",
		"in/second.pdf": "second body",
	} {
		if _, err := store.Upload(ctx, name, strings.NewReader(body), "application/pdf"); err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
	}

	root := t.TempDir()
	paths, cleanup, err := Stage(ctx, store, utils.DefaultRetryConfig(), root, []string{"in/first.pdf", "in/second.pdf", "in/first.pdf"})
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("Expected 3 paths, got %d", len(paths))
	}
	if paths[0] != paths[2] {
		t.Errorf("Expected repeated name to reuse the same local file, got %s and %s", paths[0], paths[2])
	}

	content, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "second body" {
		t.Errorf("Expected 'second body', got '%s'", string(content))
	}

	cleanup()
	if _, err := os.Stat(paths[0]); !os.IsNotExist(err) {
		t.Errorf("Expected staged files to be removed, stat returned %v", err)
	}
}

func TestStage_MissingDocument(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Upload(ctx, "in/ok.pdf", strings.NewReader("data"), "application/pdf"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	root := t.TempDir()
	_, _, err := Stage(ctx, store, utils.DefaultRetryConfig(), root, []string{"in/ok.pdf", "in/gone.pdf"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	entries, readErr := os.ReadDir(root)
	if readErr != nil {
		t.Fatalf("ReadDir failed: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("Expected staging directory to be cleaned up on failure, found %d entries", len(entries))
	}
}
