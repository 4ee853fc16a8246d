package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/zcong1993/taskbook/item"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	bucket TEXT    NOT NULL,
	id     INTEGER NOT NULL,
	kind   TEXT    NOT NULL,
	data   TEXT    NOT NULL,
	PRIMARY KEY (bucket, id)
);
`

// Bucket names; one row set per collection.
const (
	bucketStorage = "storage"
	bucketArchive = "archive"
)

// SQLiteStore persists collections in a SQLite database. Items are stored
// one row each as their JSON encoding, keyed by (bucket, id), so the wire
// format stays identical to the file backend's.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the items table exists. The caller is responsible for calling Close.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Load reads the active collection.
func (s *SQLiteStore) Load(ctx context.Context) (item.Collection, error) {
	return s.load(ctx, bucketStorage)
}

// Save replaces the active collection in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, c item.Collection) error {
	return s.save(ctx, bucketStorage, c)
}

// LoadArchive reads the archived collection.
func (s *SQLiteStore) LoadArchive(ctx context.Context) (item.Collection, error) {
	return s.load(ctx, bucketArchive)
}

// SaveArchive replaces the archived collection in a single transaction.
func (s *SQLiteStore) SaveArchive(ctx context.Context, c item.Collection) error {
	return s.save(ctx, bucketArchive, c)
}

func (s *SQLiteStore) load(ctx context.Context, bucket string) (item.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM items WHERE bucket = ? ORDER BY id`, bucket)
	if err != nil {
		return nil, fmt.Errorf("query %s items: %w", bucket, err)
	}
	defer rows.Close()

	c := item.Collection{}
	for rows.Next() {
		var (
			id   int
			data string
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s item: %w", bucket, err)
		}
		it, err := item.Decode([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s item %d: %w", bucket, id, err)
		}
		it.Common().ID = id // the row key is authoritative
		c[id] = it
	}
	return c, rows.Err()
}

func (s *SQLiteStore) save(ctx context.Context, bucket string, c item.Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE bucket = ?`, bucket); err != nil {
		return fmt.Errorf("clear %s bucket: %w", bucket, err)
	}
	for _, id := range c.IDs() {
		it := c[id]
		data, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("marshal item %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO items (bucket, id, kind, data) VALUES (?,?,?,?)`,
			bucket, id, string(it.Common().Kind), string(data)); err != nil {
			return fmt.Errorf("insert item %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
