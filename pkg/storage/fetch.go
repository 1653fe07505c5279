package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yourorg/pdf-combine-kit/pkg/utils"
)

// Fetch materializes one stored document into dir so the assembler can
// open it by path. The file keeps the document's base name. Transient
// download failures are retried; a missing document is not.
func Fetch(ctx context.Context, store Store, retry utils.RetryConfig, name, dir string) (string, error) {
	if ok, err := store.Exists(ctx, name); err == nil && !ok {
		return "", fmt.Errorf("storage: fetching %s: %w", name, ErrNotFound)
	}

	path := filepath.Join(dir, filepath.Base(name))
	err := utils.Retry(ctx, retry, func() error {
		rc, err := store.Get(ctx, name)
		if err != nil {
			return err
		}
		defer rc.Close()

		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, rc); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
	if err != nil {
		return "", fmt.Errorf("storage: fetching %s: %w", name, err)
	}
	return path, nil
}

// Stage materializes a set of stored documents into a fresh scratch
// directory under root ("" means the system temp directory). Repeated
// names are fetched once; names from different prefixes that share a
// base name are disambiguated by position. The returned cleanup
// removes the directory and everything in it.
func Stage(ctx context.Context, store Store, retry utils.RetryConfig, root string, names []string) (paths []string, cleanup func(), err error) {
	dir, err := os.MkdirTemp(root, "combine-*")
	if err != nil {
		return nil, nil, fmt.Errorf("storage: staging documents: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	fetched := make(map[string]string, len(names))
	paths = make([]string, 0, len(names))
	for i, name := range names {
		if path, ok := fetched[name]; ok {
			paths = append(paths, path)
			continue
		}

		sub := filepath.Join(dir, fmt.Sprintf("%02d", i))
		if err := os.Mkdir(sub, 0o755); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("storage: staging documents: %w", err)
		}
		path, err := Fetch(ctx, store, retry, name, sub)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		fetched[name] = path
		paths = append(paths, path)
	}
	return paths, cleanup, nil
}
