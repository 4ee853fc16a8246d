// Package storage persists taskbook collections. Three backends implement
// one contract: a local JSON file tree with atomic renames, a sqlite
// database, and a remote key-value service speaking JSON over HTTP.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/zcong1993/taskbook/item"
)

// Sentinel errors classify backend failures. Wrap them with %w and test
// with errors.Is.
var (
	// ErrInvalidDirectory means the storage root cannot be created or used.
	ErrInvalidDirectory = errors.New("invalid storage directory")
	// ErrMissingConfig means the remote backend is missing one of its three
	// required settings.
	ErrMissingConfig = errors.New("missing remote configuration")
	// ErrTransport marks network or HTTP failures talking to the remote
	// backend.
	ErrTransport = errors.New("remote transport failure")
)

// Store durably persists the two collections of one book. Load returns an
// empty collection when nothing has been written yet. Save atomically
// replaces the whole collection: a concurrent reader observes either the
// previous snapshot or the new one, never a mix. There is no cross-save
// transaction; the last writer wins.
type Store interface {
	Load(ctx context.Context) (item.Collection, error)
	Save(ctx context.Context, c item.Collection) error
	LoadArchive(ctx context.Context) (item.Collection, error)
	SaveArchive(ctx context.Context, c item.Collection) error
	Close() error
}

// WriteFileAtomic durably replaces path with data. The bytes are staged in a
// randomized scratch file (inside scratchDir when given, else next to path),
// synced, then renamed over path; the rename is the atomicity boundary. The
// parent directory is synced afterwards so the rename itself survives a
// crash. On any earlier failure the scratch file is removed and path is left
// untouched.
func WriteFileAtomic(path string, data []byte, scratchDir string, perm os.FileMode) error {
	dir := scratchDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	scratch := filepath.Join(dir, uuid.NewString()+".tmp")

	f, err := os.OpenFile(scratch, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	committed := false
	defer func() {
		_ = f.Close()
		if !committed {
			_ = os.Remove(scratch)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write scratch file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close scratch file: %w", err)
	}
	if err := os.Rename(scratch, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	committed = true
	return syncDir(filepath.Dir(path))
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close() //nolint:errcheck
	return d.Sync()
}
