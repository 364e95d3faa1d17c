package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return mock
}

func TestPostgresKV(t *testing.T) {
	ctx := context.Background()

	t.Run("ensures schema", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS kv_store")).
			WillReturnResult(pgxmock.NewResult("CREATE", 0))

		require.NoError(t, store.NewPostgresKV(mock).EnsureSchema(ctx))
	})

	t.Run("loads value", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT value")).
			WithArgs("locations").
			WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`[{"id":"a"}]`))

		raw, err := store.NewPostgresKV(mock).Load(ctx, "locations")

		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"a"}]`, string(raw))
	})

	t.Run("maps missing rows to ErrNoValue", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT value")).
			WithArgs("locations").
			WillReturnError(pgx.ErrNoRows)

		_, err := store.NewPostgresKV(mock).Load(ctx, "locations")

		assert.ErrorIs(t, err, datastore.ErrNoValue)
	})

	t.Run("propagates query errors", func(t *testing.T) {
		mock := newMockPool(t)
		errConn := errors.New("connection reset")
		mock.ExpectQuery(regexp.QuoteMeta("SELECT value")).
			WithArgs("locations").
			WillReturnError(errConn)

		_, err := store.NewPostgresKV(mock).Load(ctx, "locations")

		require.ErrorIs(t, err, errConn)
		assert.NotErrorIs(t, err, datastore.ErrNoValue)
	})

	t.Run("upserts value", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
			WithArgs("siteSettings", `{"siteName":"x"}`).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.NewPostgresKV(mock).Save(ctx, "siteSettings", []byte(`{"siteName":"x"}`)))
	})

	t.Run("deletes value", func(t *testing.T) {
		mock := newMockPool(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kv_store")).
			WithArgs("broken").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, store.NewPostgresKV(mock).Delete(ctx, "broken"))
	})
}
