// Package storage defines the Slots interface, the contract any durable
// backend must satisfy to hold the application's data.
//
// WHY SLOTS?
// ──────────
// The whole record sequence is saved and loaded as one value, the same
// way the browser front end keeps it in a single local-storage key. A
// backend therefore only needs to read a named slot and overwrite it.
// SQLite, PostgreSQL or a plain map in tests can all back the record
// store.
//
// More than one process may hold the same slot (the server and the CLI
// both open the default SQLite file), so record writes go through Swap:
// a writer whose copy is out of date gets ErrConflict instead of
// silently replacing what another process saved.
package storage

import (
	"context"
	"errors"
)

// Well-known slot names.
const (
	SlotStudents = "students"
	SlotTheme    = "theme"
)

// ErrSlotEmpty is returned by Get when nothing has been written to the
// slot yet. Callers treat it as "use the default", not as a failure.
var ErrSlotEmpty = errors.New("slot is empty")

// ErrConflict is returned by Swap when the slot no longer holds the value
// the caller expected.
var ErrConflict = errors.New("slot was changed by another writer")

// Slots is the persistence contract.
type Slots interface {
	// Get returns the value last written to key, or ErrSlotEmpty.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put overwrites the value held in key. It returns only after the
	// value is durable.
	Put(ctx context.Context, key string, value []byte) error

	// Swap stores value in key only if key still holds old. A nil old
	// means key must still be empty. On a mismatch nothing is written
	// and ErrConflict is returned.
	Swap(ctx context.Context, key string, old, value []byte) error

	// Close releases the backend's resources.
	Close() error
}
