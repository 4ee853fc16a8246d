package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zcong1993/taskbook/item"
)

const (
	storageDirName = "storage"
	archiveDirName = "archive"
	scratchDirName = ".temp"

	storageFileName = "storage.json"
	archiveFileName = "archive.json"
)

// FileStore keeps collections as indented JSON files under a root
// directory: storage/storage.json for active items, archive/archive.json
// for archived ones. Every write is staged through the .temp scratch
// directory and renamed into place, so a crash mid-write never corrupts
// the canonical files.
type FileStore struct {
	root   string
	logger *slog.Logger
}

// NewFileStore ensures the root and its storage, archive and scratch
// subdirectories exist, then purges scratch files abandoned by a previous
// crash. Everything under .temp is scratch, so the purge removes it all.
func NewFileStore(root string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &FileStore{root: root, logger: logger}
	for _, dir := range []string{root, s.storageDir(), s.archiveDir(), s.scratchDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDirectory, dir, err)
		}
	}
	s.purgeScratch()
	return s, nil
}

func (s *FileStore) storageDir() string { return filepath.Join(s.root, storageDirName) }
func (s *FileStore) archiveDir() string { return filepath.Join(s.root, archiveDirName) }
func (s *FileStore) scratchDir() string { return filepath.Join(s.root, scratchDirName) }

func (s *FileStore) storagePath() string { return filepath.Join(s.storageDir(), storageFileName) }
func (s *FileStore) archivePath() string { return filepath.Join(s.archiveDir(), archiveFileName) }

func (s *FileStore) purgeScratch() {
	entries, err := os.ReadDir(s.scratchDir())
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(s.scratchDir(), e.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove stale scratch file", "path", path, "error", err)
			continue
		}
		s.logger.Debug("removed stale scratch file", "path", path)
	}
}

// Load reads the active collection. A missing file means nothing has been
// saved yet and yields an empty collection, not an error.
func (s *FileStore) Load(_ context.Context) (item.Collection, error) {
	return s.load(s.storagePath())
}

// Save atomically replaces the active collection on disk.
func (s *FileStore) Save(_ context.Context, c item.Collection) error {
	return s.save(s.storagePath(), c)
}

// LoadArchive reads the archived collection.
func (s *FileStore) LoadArchive(_ context.Context) (item.Collection, error) {
	return s.load(s.archivePath())
}

// SaveArchive atomically replaces the archived collection on disk.
func (s *FileStore) SaveArchive(_ context.Context, c item.Collection) error {
	return s.save(s.archivePath(), c)
}

// Close is a no-op; the file backend holds no open handles between calls.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) load(path string) (item.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return item.Collection{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var c item.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func (s *FileStore) save(path string, c item.Collection) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	if err := WriteFileAtomic(path, data, s.scratchDir(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
