package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend runs the behaviour every datastore.Backend shares.
func testBackend(t *testing.T, b datastore.Backend) {
	t.Helper()

	ctx := context.Background()

	t.Run("missing key returns ErrNoValue", func(t *testing.T) {
		_, err := b.Load(ctx, "missing")

		assert.ErrorIs(t, err, datastore.ErrNoValue)
	})

	t.Run("saves and loads raw documents", func(t *testing.T) {
		require.NoError(t, b.Save(ctx, "locations", []byte(`[{"id":"a"}]`)))

		raw, err := b.Load(ctx, "locations")

		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"a"}]`, string(raw))
	})

	t.Run("overwrites existing value", func(t *testing.T) {
		require.NoError(t, b.Save(ctx, "siteSettings", []byte(`{"siteName":"a"}`)))
		require.NoError(t, b.Save(ctx, "siteSettings", []byte(`{"siteName":"b"}`)))

		raw, err := b.Load(ctx, "siteSettings")

		require.NoError(t, err)
		assert.JSONEq(t, `{"siteName":"b"}`, string(raw))
	})

	t.Run("keeps malformed documents verbatim", func(t *testing.T) {
		require.NoError(t, b.Save(ctx, "broken", []byte(`{not json`)))

		raw, err := b.Load(ctx, "broken")

		require.NoError(t, err)
		assert.Equal(t, `{not json`, string(raw))
	})

	t.Run("deletes values", func(t *testing.T) {
		require.NoError(t, b.Save(ctx, "gone", []byte(`[]`)))
		require.NoError(t, b.Delete(ctx, "gone"))

		_, err := b.Load(ctx, "gone")
		assert.ErrorIs(t, err, datastore.ErrNoValue)
	})

	t.Run("deleting a missing key is not an error", func(t *testing.T) {
		assert.NoError(t, b.Delete(ctx, "never-saved"))
	})
}

func TestMemoryKV(t *testing.T) {
	testBackend(t, store.NewMemoryKV())

	t.Run("does not alias caller buffers", func(t *testing.T) {
		ctx := context.Background()
		kv := store.NewMemoryKV()
		buf := []byte(`[1]`)

		require.NoError(t, kv.Save(ctx, "k", buf))
		buf[1] = '2'

		raw, err := kv.Load(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `[1]`, string(raw))

		raw[1] = '3'

		again, err := kv.Load(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, `[1]`, string(again))
	})
}

func TestRedisKV(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	testBackend(t, store.NewRedisKV(client))

	t.Run("namespaces keys", func(t *testing.T) {
		require.NoError(t, store.NewRedisKV(client).Save(context.Background(), "blogPosts", []byte(`[]`)))

		assert.True(t, mr.Exists("wf:kv:blogPosts"))
	})

	t.Run("propagates connection errors", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		t.Cleanup(func() { _ = broken.Close() })

		_, err := store.NewRedisKV(broken).Load(context.Background(), "k")

		require.Error(t, err)
		assert.NotErrorIs(t, err, datastore.ErrNoValue)
	})
}
