package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zcong1993/taskbook/storage"
)

// Store persists values as flat files, one per key: <dir>/<namespace>/<key>.
// Writes go through the atomic rename helper, so a reader observes either
// the previous value or the new one. Concurrent writers to one key race
// benignly; the last rename wins.
type Store struct {
	dir string
}

// NewStore ensures the data directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Get returns the stored value, or nil when the key has never been written.
func (st *Store) Get(namespace, key string) (json.RawMessage, error) {
	data, err := os.ReadFile(st.path(namespace, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Put stores the value, creating the namespace directory on first use.
func (st *Store) Put(namespace, key string, value []byte) error {
	dir := filepath.Join(st.dir, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create namespace dir %s: %w", dir, err)
	}
	return storage.WriteFileAtomic(filepath.Join(dir, key), value, "", 0o644)
}

func (st *Store) path(namespace, key string) string {
	return filepath.Join(st.dir, namespace, key)
}
