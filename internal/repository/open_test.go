package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmdiary/internal/config"
	"github.com/mamadbah2/farmdiary/internal/repository/memory"
	"github.com/mamadbah2/farmdiary/internal/repository/sqlite"
	"github.com/mamadbah2/farmdiary/internal/repository/storage"
)

func TestOpenMemory(t *testing.T) {
	store, err := Open(context.Background(), config.StorageConfig{Driver: config.DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "farm.db"),
	}

	store, err := Open(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })
	assert.IsType(t, &sqlite.Store{}, store)

	require.NoError(t, storage.SaveJSON(ctx, store, "k", []int{1, 2}))
	var got []int
	found, err := storage.LoadJSON(ctx, store, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int{1, 2}, got)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Driver: "redis"}, nil)
	assert.ErrorContains(t, err, `unknown storage driver "redis"`)
}
