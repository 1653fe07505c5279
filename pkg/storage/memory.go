package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	docs  map[string][]byte
	types map[string]string
	mu    sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:  make(map[string][]byte),
		types: make(map[string]string),
	}
}

// Upload stores a document in memory.
func (m *MemoryStore) Upload(ctx context.Context, name string, data io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[name] = b
	m.types[name] = contentType
	return "mem://" + name, nil
}

// Get opens a stored document for reading.
func (m *MemoryStore) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[name]
	if !ok {
		return nil, fmt.Errorf("storage: %s: %w", name, ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes a stored document.
func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[name]; !ok {
		return fmt.Errorf("storage: %s: %w", name, ErrNotFound)
	}
	delete(m.docs, name)
	delete(m.types, name)
	return nil
}

// Exists checks whether a document is stored.
func (m *MemoryStore) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.docs[name]
	return ok, nil
}

// List enumerates stored documents with an optional name prefix.
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]DocumentInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []DocumentInfo
	for name, data := range m.docs {
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		docs = append(docs, DocumentInfo{
			Name:        name,
			Size:        int64(len(data)),
			ContentType: m.types[name],
			URL:         "mem://" + name,
		})
	}
	return docs, nil
}
