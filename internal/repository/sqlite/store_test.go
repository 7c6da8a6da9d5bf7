package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmdiary/internal/repository/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "farm.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestStore_PutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, "farmDiaryUsers", []byte(`{}`)))
	require.NoError(t, s.Put(ctx, "farmDiaryUsers", []byte(`{"a@b.c":{}}`)))

	got, err := s.Get(ctx, "farmDiaryUsers")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a@b.c":{}}`, string(got))
}

func TestStore_MissingKey(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Put(ctx, "farmSales_a@b.c", []byte(`[]`)))
	require.NoError(t, s.Delete(ctx, "farmSales_a@b.c"))
	require.NoError(t, s.Delete(ctx, "farmSales_a@b.c"))

	_, err := s.Get(ctx, "farmSales_a@b.c")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_JSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, storage.SaveJSON(ctx, s, "weatherSearchLogs", []map[string]any{{"city": "Accra"}}))

	var logs []map[string]any
	found, err := storage.LoadJSON(ctx, s, "weatherSearchLogs", &logs)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, logs, 1)
	assert.Equal(t, "Accra", logs[0]["city"])
}
