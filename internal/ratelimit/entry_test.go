package ratelimit_test

import (
	"testing"
	"time"

	"github.com/serroba/wastefinder/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(1_700_000_000, 0)

func at(ms int) time.Time {
	return epoch.Add(time.Duration(ms) * time.Millisecond)
}

func TestEntry_Check(t *testing.T) {
	rule := ratelimit.Rule{MaxRequests: 3, Window: time.Second, BlockDuration: 2 * time.Second}

	t.Run("example scenario", func(t *testing.T) {
		e := &ratelimit.Entry{}

		for i := range 3 {
			res := e.Check(rule, at(0))
			require.False(t, res.Limited, "request %d", i+1)
			assert.Equal(t, 2-i, res.Remaining)
		}

		res := e.Check(rule, at(100))
		require.True(t, res.Limited)
		assert.Equal(t, at(2100), e.BlockUntil)
		assert.Equal(t, at(2100), res.ResetAt)
		assert.Equal(t, 2*time.Second, res.RetryAfter)

		res = e.Check(rule, at(1500))
		assert.True(t, res.Limited, "block governs after the window expired")
		assert.Equal(t, 600*time.Millisecond, res.RetryAfter)

		res = e.Check(rule, at(2200))
		assert.False(t, res.Limited)
		assert.Equal(t, 1, res.Count, "a fresh window starts")
		assert.Equal(t, []time.Time{at(2200)}, e.Timestamps)
	})

	t.Run("window eviction", func(t *testing.T) {
		e := &ratelimit.Entry{}
		noBlock := ratelimit.Rule{MaxRequests: 3, Window: time.Second}

		for range 3 {
			require.False(t, e.Check(noBlock, at(0)).Limited)
		}

		res := e.Check(noBlock, at(1001))

		assert.False(t, res.Limited)
		assert.Equal(t, 1, res.Count)
	})

	t.Run("timestamps exactly one window old are evicted", func(t *testing.T) {
		e := &ratelimit.Entry{}
		noBlock := ratelimit.Rule{MaxRequests: 1, Window: time.Second}

		require.False(t, e.Check(noBlock, at(0)).Limited)
		assert.True(t, e.Check(noBlock, at(999)).Limited)
		assert.False(t, e.Check(noBlock, at(1000)).Limited)
	})

	t.Run("block persists for its whole duration", func(t *testing.T) {
		e := &ratelimit.Entry{}

		for range 4 {
			e.Check(rule, at(0))
		}

		for ms := 0; ms < 2000; ms += 250 {
			assert.True(t, e.Check(rule, at(ms)).Limited, "t=%dms", ms)
		}
	})

	t.Run("request at blockUntil is evaluated fresh and counted", func(t *testing.T) {
		e := &ratelimit.Entry{}

		for range 4 {
			e.Check(rule, at(0))
		}

		res := e.Check(rule, at(2000))

		assert.False(t, res.Limited)
		assert.False(t, e.Blocked)
		assert.Len(t, e.Timestamps, 1)
	})

	t.Run("rejected requests are not recorded", func(t *testing.T) {
		e := &ratelimit.Entry{}

		for range 10 {
			e.Check(rule, at(0))
		}

		assert.Len(t, e.Timestamps, 3)
	})

	t.Run("zero block rejects only while the window is full", func(t *testing.T) {
		e := &ratelimit.Entry{}
		noBlock := ratelimit.Rule{MaxRequests: 2, Window: time.Second}

		e.Check(noBlock, at(0))
		e.Check(noBlock, at(400))

		res := e.Check(noBlock, at(500))
		require.True(t, res.Limited)
		assert.Equal(t, at(1000), res.ResetAt)
		assert.Equal(t, 500*time.Millisecond, res.RetryAfter)

		assert.False(t, e.Check(noBlock, at(1001)).Limited)
	})

	t.Run("tracks the longest window", func(t *testing.T) {
		e := &ratelimit.Entry{}

		e.Check(ratelimit.Rule{MaxRequests: 5, Window: time.Hour}, at(0))
		e.Check(ratelimit.Rule{MaxRequests: 5, Window: time.Minute}, at(1))

		assert.Equal(t, time.Hour, e.Window)
	})
}

func TestEntry_Remaining(t *testing.T) {
	rule := ratelimit.Rule{MaxRequests: 3, Window: time.Second}

	e := &ratelimit.Entry{}
	e.Check(rule, at(0))
	e.Check(rule, at(500))

	assert.Equal(t, 1, e.Remaining(rule, at(600)))
	assert.Equal(t, 2, e.Remaining(rule, at(1200)), "first request left the window")
	assert.Equal(t, 3, e.Remaining(rule, at(5000)))
	assert.Len(t, e.Timestamps, 2, "remaining does not mutate")

	full := &ratelimit.Entry{Timestamps: []time.Time{at(0), at(0), at(0), at(0)}}
	assert.Equal(t, 0, full.Remaining(rule, at(10)), "never negative")
}

func TestEntry_BlockedUntil(t *testing.T) {
	rule := ratelimit.Rule{MaxRequests: 1, Window: time.Second, BlockDuration: 2 * time.Second}

	e := &ratelimit.Entry{}
	e.Check(rule, at(0))

	_, blocked := e.BlockedUntil(at(10))
	assert.False(t, blocked, "a full window is not a block")

	e.Check(rule, at(100))

	until, blocked := e.BlockedUntil(at(200))
	assert.True(t, blocked)
	assert.Equal(t, at(2100), until)

	_, blocked = e.BlockedUntil(at(2100))
	assert.False(t, blocked, "block ends at its deadline")
	assert.Len(t, e.Timestamps, 1, "reporting does not record")
}

func TestEntry_Sweep(t *testing.T) {
	t.Run("drops stale history and reports idle", func(t *testing.T) {
		e := &ratelimit.Entry{Timestamps: []time.Time{at(0)}, Window: time.Minute}

		idle := e.Sweep(at(0).Add(6*time.Minute), 5*time.Minute)

		assert.True(t, idle)
		assert.Empty(t, e.Timestamps)
	})

	t.Run("keeps history younger than the entry window", func(t *testing.T) {
		e := &ratelimit.Entry{Timestamps: []time.Time{at(0)}, Window: 15 * time.Minute}

		idle := e.Sweep(at(0).Add(10*time.Minute), 5*time.Minute)

		assert.False(t, idle)
		assert.Len(t, e.Timestamps, 1)
	})

	t.Run("keeps active blocks", func(t *testing.T) {
		e := &ratelimit.Entry{Blocked: true, BlockUntil: at(0).Add(30 * time.Minute)}

		assert.False(t, e.Sweep(at(0).Add(10*time.Minute), 5*time.Minute))
		assert.True(t, e.Blocked)
	})

	t.Run("lifts expired blocks", func(t *testing.T) {
		e := &ratelimit.Entry{Blocked: true, BlockUntil: at(0).Add(time.Minute)}

		assert.True(t, e.Sweep(at(0).Add(10*time.Minute), 5*time.Minute))
		assert.False(t, e.Blocked)
	})
}

func TestRule_Validate(t *testing.T) {
	tests := []struct {
		name string
		rule ratelimit.Rule
		ok   bool
	}{
		{"presets are valid", ratelimit.Presets[ratelimit.PresetAuth], true},
		{"zero block is valid", ratelimit.Rule{MaxRequests: 1, Window: time.Second}, true},
		{"zero max", ratelimit.Rule{Window: time.Second}, false},
		{"zero window", ratelimit.Rule{MaxRequests: 1}, false},
		{"negative block", ratelimit.Rule{MaxRequests: 1, Window: time.Second, BlockDuration: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ratelimit.ErrInvalidRule)
			}
		})
	}
}

func TestRuleFor(t *testing.T) {
	assert.Equal(t, ratelimit.Rule{MaxRequests: 5, Window: 15 * time.Minute, BlockDuration: 30 * time.Minute},
		ratelimit.RuleFor(ratelimit.PresetAuth))
	assert.Equal(t, ratelimit.Rule{MaxRequests: 100, Window: time.Minute, BlockDuration: 5 * time.Minute},
		ratelimit.RuleFor(ratelimit.PresetAPI))
	assert.Equal(t, ratelimit.Rule{MaxRequests: 200, Window: time.Minute, BlockDuration: 2 * time.Minute},
		ratelimit.RuleFor(ratelimit.PresetPublic))
	assert.Equal(t, ratelimit.RuleFor(ratelimit.PresetAPI), ratelimit.RuleFor("unknown"))
}
