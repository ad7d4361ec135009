// Package backend turns the storage section of the config into a live
// storage.Slots. It is the one place that knows every driver, so main
// packages only ever see the interface.
package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
	"github.com/aanand-mishra/student-records/internal/storage/postgres"
	"github.com/aanand-mishra/student-records/internal/storage/sqlite"
)

// Open connects to the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage) (storage.Slots, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("backend.Open: create %s: %w", dir, err)
			}
		}
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverPostgres:
		p, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("backend.Open: unknown driver %q", cfg.Driver)
	}
}
