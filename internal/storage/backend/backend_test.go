package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "records.db")

	slots, err := Open(context.Background(), config.Storage{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	defer slots.Close()

	_, err = slots.Get(context.Background(), storage.SlotStudents)
	assert.ErrorIs(t, err, storage.ErrSlotEmpty)
}

func TestOpen_Memory(t *testing.T) {
	slots, err := Open(context.Background(), config.Storage{Driver: config.DriverMemory})
	require.NoError(t, err)
	require.NoError(t, slots.Put(context.Background(), storage.SlotTheme, []byte("dark")))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.Storage{Driver: "mongo"})
	require.Error(t, err)
}
