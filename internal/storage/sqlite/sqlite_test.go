package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGet_EmptySlot(t *testing.T) {
	s := setupDB(t)

	_, err := s.Get(context.Background(), storage.SlotStudents)
	require.ErrorIs(t, err, storage.ErrSlotEmpty)
}

func TestPut_InsertAndOverwrite(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, storage.SlotTheme, []byte("dark")))
	got, err := s.Get(ctx, storage.SlotTheme)
	require.NoError(t, err)
	assert.Equal(t, []byte("dark"), got)

	require.NoError(t, s.Put(ctx, storage.SlotTheme, []byte("light")))
	got, err = s.Get(ctx, storage.SlotTheme)
	require.NoError(t, err)
	assert.Equal(t, []byte("light"), got)

	var n int
	require.NoError(t, s.Db.QueryRow(`SELECT COUNT(*) FROM slots`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, storage.SlotStudents, []byte(`[]`)))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, storage.SlotStudents)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)
}

func TestSwap(t *testing.T) {
	s := setupDB(t)
	ctx := context.Background()

	// nil old: only succeeds while the slot is empty.
	require.NoError(t, s.Swap(ctx, storage.SlotStudents, nil, []byte(`[1]`)))
	require.ErrorIs(t, s.Swap(ctx, storage.SlotStudents, nil, []byte(`[2]`)), storage.ErrConflict)

	require.ErrorIs(t, s.Swap(ctx, storage.SlotStudents, []byte(`[0]`), []byte(`[2]`)), storage.ErrConflict)
	require.NoError(t, s.Swap(ctx, storage.SlotStudents, []byte(`[1]`), []byte(`[2]`)))

	got, err := s.Get(ctx, storage.SlotStudents)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[2]`), got)
}

func TestSwap_TwoConnectionsOneFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	ctx := context.Background()

	a, err := New(path)
	require.NoError(t, err)
	defer a.Close()
	b, err := New(path)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Swap(ctx, storage.SlotStudents, nil, []byte(`["a"]`)))

	// b never saw a's write, so it still expects an empty slot.
	require.ErrorIs(t, b.Swap(ctx, storage.SlotStudents, nil, []byte(`["b"]`)), storage.ErrConflict)

	got, err := b.Get(ctx, storage.SlotStudents)
	require.NoError(t, err)
	assert.Equal(t, []byte(`["a"]`), got)
}
