package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/zcong1993/taskbook/item"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return s
}

func testCollection() item.Collection {
	task := item.NewTask(1, "buy milk", []string{"@shopping"}, item.PriorityMedium)
	note := item.NewNote(2, "milk expands when frozen", nil)
	note.Starred = true
	return item.Collection{1: task, 2: note}
}

func TestFileStore_LoadMissingIsEmpty(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	c, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c) != 0 {
		t.Errorf("Load on fresh store: got %d items, want 0", len(c))
	}
	a, err := s.LoadArchive(ctx)
	if err != nil {
		t.Fatalf("LoadArchive: %v", err)
	}
	if len(a) != 0 {
		t.Errorf("LoadArchive on fresh store: got %d items, want 0", len(a))
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Load: got %d items, want 2", len(got))
	}

	task, ok := got[1].(*item.Task)
	if !ok {
		t.Fatalf("item 1: got %T, want *item.Task", got[1])
	}
	if task.Description != "buy milk" {
		t.Errorf("Description = %q, want %q", task.Description, "buy milk")
	}
	if len(task.Boards) != 1 || task.Boards[0] != "@shopping" {
		t.Errorf("Boards = %v, want [@shopping]", task.Boards)
	}
	if task.Priority != item.PriorityMedium {
		t.Errorf("Priority = %d, want %d", task.Priority, item.PriorityMedium)
	}

	note, ok := got[2].(*item.Note)
	if !ok {
		t.Fatalf("item 2: got %T, want *item.Note", got[2])
	}
	if !note.Starred {
		t.Error("note lost its star over the round trip")
	}
}

func TestFileStore_ArchiveIsSeparate(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.SaveArchive(ctx, item.Collection{1: item.NewNote(1, "archived", nil)}); err != nil {
		t.Fatalf("SaveArchive: %v", err)
	}

	c, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c) != 2 {
		t.Errorf("active: got %d items, want 2", len(c))
	}
	a, err := s.LoadArchive(ctx)
	if err != nil {
		t.Fatalf("LoadArchive: %v", err)
	}
	if len(a) != 1 {
		t.Errorf("archive: got %d items, want 1", len(a))
	}
	if a[1].Common().Description != "archived" {
		t.Errorf("archive item = %q, want archived", a[1].Common().Description)
	}
}

func TestFileStore_PurgesStaleScratch(t *testing.T) {
	root := t.TempDir()
	scratch := filepath.Join(root, scratchDirName)
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		t.Fatalf("mkdir scratch: %v", err)
	}
	stale := filepath.Join(scratch, "deadbeef.tmp")
	if err := os.WriteFile(stale, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write stale scratch: %v", err)
	}

	if _, err := NewFileStore(root, testLogger()); err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("stale scratch file survived startup: stat err = %v", err)
	}
}

func TestFileStore_FailedSaveKeepsCanonical(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testCollection()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	before, err := os.ReadFile(s.storagePath())
	if err != nil {
		t.Fatalf("read canonical file: %v", err)
	}

	// Without the scratch directory staging fails, so the save errors before
	// the rename ever happens.
	if err := os.RemoveAll(s.scratchDir()); err != nil {
		t.Fatalf("remove scratch dir: %v", err)
	}
	if err := s.Save(ctx, item.Collection{3: item.NewTask(3, "never lands", nil, 0)}); err == nil {
		t.Fatal("Save without scratch dir: want error, got nil")
	}

	after, err := os.ReadFile(s.storagePath())
	if err != nil {
		t.Fatalf("read canonical file after failed save: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("failed save changed the canonical file")
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load after failed save: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Load after failed save: got %d items, want the prior 2", len(got))
	}
}

func TestFileStore_NoScratchLeftBehind(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	for range 3 {
		if err := s.Save(ctx, testCollection()); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	entries, err := os.ReadDir(s.scratchDir())
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch dir has %d leftover files, want 0", len(entries))
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := WriteFileAtomic(path, []byte("one"), "", 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two"), "", 0o644); err != nil {
		t.Fatalf("WriteFileAtomic overwrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "two" {
		t.Errorf("content = %q, want %q", data, "two")
	}

	// No scratch debris next to the target.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want just the target", len(entries))
	}
}
