package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmdiary/internal/repository/storage"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "postgres")), mock
}

func TestStore_Get(t *testing.T) {
	s, mock := newMockStore(t)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM blobs WHERE key = \$1`).
			WithArgs("farmCrops_kofi@farm.gh").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

		got, err := s.Get(context.Background(), "farmCrops_kofi@farm.gh")
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM blobs WHERE key = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := s.Get(context.Background(), "nope")
		require.ErrorIs(t, err, storage.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver failure", func(t *testing.T) {
		mock.ExpectQuery(`SELECT value FROM blobs`).
			WithArgs("k").
			WillReturnError(errors.New("connection reset"))

		_, err := s.Get(context.Background(), "k")
		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestStore_PutUpserts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO blobs \(key,value,updated_at\) VALUES \(\$1,\$2,\$3\) ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("farmDiaryUsers", []byte(`{}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Put(context.Background(), "farmDiaryUsers", []byte(`{}`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Delete(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM blobs WHERE key = \$1`).
		WithArgs("farmSales_kofi@farm.gh").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), "farmSales_kofi@farm.gh"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Migrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS blobs`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
