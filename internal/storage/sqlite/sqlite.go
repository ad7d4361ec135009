// Package sqlite provides a SQLite-backed implementation of the
// storage.Slots interface using Go's standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk. There is no
// network, no separate server process, and no installation beyond the
// driver. It is the closest thing on a server to the browser's local storage.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/storage"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Slots.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path, creates the slots table if it
// does not already exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows one writer at a time. A single connection also keeps
	// ":memory:" databases from splitting into one database per connection.
	db.SetMaxOpenConns(1)

	// Schema:
	//   key   — slot name, e.g. "students" or "theme"
	//   value — the serialized slot contents
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS slots (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Get reads one slot. sql.ErrNoRows is translated into storage.ErrSlotEmpty
// so callers never need to know which backend they are talking to.
func (s *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := s.Db.QueryRowContext(ctx,
		"SELECT value FROM slots WHERE key = ? LIMIT 1", key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSlotEmpty
		}
		return nil, fmt.Errorf("Get: scan %q: %w", key, err)
	}

	return value, nil
}

// Put overwrites one slot with an upsert so the write is a single
// statement: either the new value is stored or the old one is kept.
func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO slots (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("Put: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("Put: exec %q: %w", key, err)
	}

	return nil
}

// Swap is a compare-and-set on one slot. The comparison and the write
// happen in a single statement, so two processes sharing the file cannot
// both win.
func (s *SQLite) Swap(ctx context.Context, key string, old, value []byte) error {
	var (
		res sql.Result
		err error
	)
	if old == nil {
		res, err = s.Db.ExecContext(ctx, `
			INSERT INTO slots (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO NOTHING
		`, key, value)
	} else {
		res, err = s.Db.ExecContext(ctx,
			"UPDATE slots SET value = ? WHERE key = ? AND value = ?",
			value, key, old)
	}
	if err != nil {
		return fmt.Errorf("Swap: exec %q: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Swap: rows affected %q: %w", key, err)
	}
	if n == 0 {
		return storage.ErrConflict
	}

	return nil
}

// Close closes the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
