package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", v)

	require.NoError(t, s.Remove(ctx, "k"))
	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	// Removing a missing key is not an error.
	require.NoError(t, s.Remove(ctx, "k"))
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "alerts.db")

	s, err := NewSQLite(ctx, path)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "ledger", `[[7,{"vehicleId":7}]]`))
	require.NoError(t, s.Set(ctx, "ledger", `[[8,{"vehicleId":8}]]`))

	v, ok, err := s.Get(ctx, "ledger")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[[8,{"vehicleId":8}]]`, v)

	require.NoError(t, s.Close())

	// Values survive reopening the file.
	s2, err := NewSQLite(ctx, path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err = s2.Get(ctx, "ledger")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[[8,{"vehicleId":8}]]`, v)

	require.NoError(t, s2.Remove(ctx, "ledger"))
	_, ok, err = s2.Get(ctx, "ledger")
	require.NoError(t, err)
	require.False(t, ok)
}
