// Package postgres provides a PostgreSQL-backed implementation of the
// storage.Slots interface using a pgx connection pool.
//
// Use it when several server instances must share one set of records;
// for a single machine the SQLite backend is simpler.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the concrete implementation of storage.Slots.
type Postgres struct {
	Pool *pgxpool.Pool
}

// New connects to the database at dsn, verifies the connection and
// creates the slots table if it does not already exist.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS slots (
			key   TEXT PRIMARY KEY,
			value BYTEA NOT NULL
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

// Get reads one slot, translating pgx.ErrNoRows into storage.ErrSlotEmpty.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := p.Pool.QueryRow(ctx,
		"SELECT value FROM slots WHERE key = $1", key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrSlotEmpty
		}
		return nil, fmt.Errorf("Get: scan %q: %w", key, err)
	}

	return value, nil
}

// Put overwrites one slot.
func (p *Postgres) Put(ctx context.Context, key string, value []byte) error {
	_, err := p.Pool.Exec(ctx, `
		INSERT INTO slots (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("Put: exec %q: %w", key, err)
	}

	return nil
}

// Swap is a compare-and-set on one slot, done in a single statement.
func (p *Postgres) Swap(ctx context.Context, key string, old, value []byte) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	if old == nil {
		tag, err = p.Pool.Exec(ctx, `
			INSERT INTO slots (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING
		`, key, value)
	} else {
		tag, err = p.Pool.Exec(ctx,
			"UPDATE slots SET value = $1 WHERE key = $2 AND value = $3",
			value, key, old)
	}
	if err != nil {
		return fmt.Errorf("Swap: exec %q: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrConflict
	}

	return nil
}

// Close closes the pool. It never fails; the error return satisfies
// storage.Slots.
func (p *Postgres) Close() error {
	p.Pool.Close()
	return nil
}
