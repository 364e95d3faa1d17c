package ratelimit_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serroba/wastefinder/internal/ratelimit"
	"github.com/serroba/wastefinder/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) Sweep(context.Context, time.Time, time.Duration) (int, error) {
	s.calls.Add(1)

	return 0, s.err
}

func TestJanitor(t *testing.T) {
	t.Run("sweeps on every tick until shutdown", func(t *testing.T) {
		sweeper := &countingSweeper{}
		janitor := ratelimit.NewJanitor(sweeper, 10*time.Millisecond, time.Minute, zap.NewNop())

		require.NoError(t, janitor.Start(context.Background()))

		assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

		require.NoError(t, janitor.Shutdown())

		calls := sweeper.calls.Load()
		time.Sleep(30 * time.Millisecond)
		assert.Equal(t, calls, sweeper.calls.Load(), "no sweeps after shutdown")
	})

	t.Run("shutdown without start is a no-op", func(t *testing.T) {
		janitor := ratelimit.NewJanitor(&countingSweeper{}, 0, 0, zap.NewNop())

		assert.NoError(t, janitor.Shutdown())
	})

	t.Run("second start fails and shutdown stays safe", func(t *testing.T) {
		janitor := ratelimit.NewJanitor(&countingSweeper{}, 10*time.Millisecond, time.Minute, zap.NewNop())

		require.NoError(t, janitor.Start(context.Background()))
		require.ErrorIs(t, janitor.Start(context.Background()), ratelimit.ErrJanitorStarted)

		assert.NotPanics(t, func() {
			require.NoError(t, janitor.Shutdown())
			require.NoError(t, janitor.Shutdown())
		})
	})

	t.Run("sweep errors are logged, not fatal", func(t *testing.T) {
		sweeper := &countingSweeper{err: errors.New("boom")}
		janitor := ratelimit.NewJanitor(sweeper, time.Hour, time.Minute, zap.NewNop())

		janitor.Sweep(context.Background())

		assert.Equal(t, int32(1), sweeper.calls.Load())
	})

	t.Run("forgets idle clients and reports the tracked count", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()
		rule := ratelimit.Rule{MaxRequests: 10, Window: time.Minute}
		old := time.Now().Add(-time.Hour)

		_, err := s.Check(context.Background(), "idle", rule, old)
		require.NoError(t, err)
		_, err = s.Check(context.Background(), "active", rule, time.Now())
		require.NoError(t, err)

		tracked := -1
		janitor := ratelimit.NewJanitor(s, time.Hour, 5*time.Minute, zap.NewNop()).
			OnSweep(func(n int) { tracked = n })

		janitor.Sweep(context.Background())

		assert.Equal(t, 1, s.Len())
		assert.Equal(t, 1, tracked)
	})
}
