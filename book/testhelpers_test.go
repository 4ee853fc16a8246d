package book

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/zcong1993/taskbook/item"
)

// memStore satisfies storage.Store for tests. It clones on every call the
// way a real backend's serialization boundary would, and counts saves so
// tests can assert that failed validation writes nothing.
type memStore struct {
	active  item.Collection
	archive item.Collection
	saves   int
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{active: item.Collection{}, archive: item.Collection{}}
}

func (m *memStore) Load(_ context.Context) (item.Collection, error) {
	return m.active.Clone(), nil
}

func (m *memStore) Save(_ context.Context, c item.Collection) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.active = c.Clone()
	m.saves++
	return nil
}

func (m *memStore) LoadArchive(_ context.Context) (item.Collection, error) {
	return m.archive.Clone(), nil
}

func (m *memStore) SaveArchive(_ context.Context, c item.Collection) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.archive = c.Clone()
	m.saves++
	return nil
}

func (m *memStore) Close() error { return nil }

func newTestBook(t *testing.T) (*Book, *memStore) {
	t.Helper()
	store := newMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, logger), store
}
