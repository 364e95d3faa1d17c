package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/wastefinder/internal/ratelimit"
)

// checkScript runs one sliding window check atomically.
// KEYS[1] is a sorted set of accepted request times, KEYS[2] holds the block deadline.
// Returns {limited, count, blockUntil, oldest} with instants in unix milliseconds.
var checkScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local block = tonumber(ARGV[4])

local blocked = tonumber(redis.call('GET', KEYS[2]) or '0')
if blocked > now then
  return {1, redis.call('ZCARD', KEYS[1]), blocked, 0}
end

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)

local count = redis.call('ZCARD', KEYS[1])
local oldest = now
local first = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
if #first > 0 then
  oldest = tonumber(first[2])
end

if count >= max then
  local untilv = now + block
  if block > 0 then
    redis.call('SET', KEYS[2], untilv, 'PX', block)
  end
  return {1, count, untilv, oldest}
end

redis.call('ZADD', KEYS[1], ARGV[1], ARGV[5])
redis.call('PEXPIRE', KEYS[1], window)
return {0, count + 1, 0, oldest}
`)

// RateLimitRedisStore is a Redis implementation of ratelimit.Store.
// Idle clients expire through key TTLs, so it needs no sweep.
type RateLimitRedisStore struct {
	client *redis.Client
	prefix string
}

// NewRateLimitRedisStore creates a new Redis-backed rate limit store.
func NewRateLimitRedisStore(client *redis.Client) *RateLimitRedisStore {
	return &RateLimitRedisStore{
		client: client,
		prefix: "wf:rl:",
	}
}

func (s *RateLimitRedisStore) Check(
	ctx context.Context, key string, rule ratelimit.Rule, now time.Time,
) (ratelimit.Result, error) {
	vals, err := checkScript.Run(ctx, s.client,
		[]string{s.timestampsKey(key), s.blockKey(key)},
		now.UnixMilli(),
		rule.Window.Milliseconds(),
		rule.MaxRequests,
		rule.BlockDuration.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("rate limit check: %w", err)
	}

	if len(vals) != 4 {
		return ratelimit.Result{}, fmt.Errorf("rate limit check: unexpected reply %v", vals)
	}

	count := int(vals[1])
	oldest := time.UnixMilli(vals[3])

	if vals[0] == 1 {
		reset := time.UnixMilli(vals[2])
		if !reset.After(now) {
			reset = oldest.Add(rule.Window)
		}

		return ratelimit.Result{
			Limited:    true,
			Count:      count,
			ResetAt:    reset,
			RetryAfter: reset.Sub(now),
		}, nil
	}

	return ratelimit.Result{
		Count:     count,
		Remaining: rule.MaxRequests - count,
		ResetAt:   oldest.Add(rule.Window),
	}, nil
}

func (s *RateLimitRedisStore) Remaining(
	ctx context.Context, key string, rule ratelimit.Rule, now time.Time,
) (int, error) {
	cutoff := "(" + strconv.FormatInt(now.Add(-rule.Window).UnixMilli(), 10)

	n, err := s.client.ZCount(ctx, s.timestampsKey(key), cutoff, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit remaining: %w", err)
	}

	return max(rule.MaxRequests-int(n), 0), nil
}

// BlockedUntil reads the block deadline of key.
func (s *RateLimitRedisStore) BlockedUntil(ctx context.Context, key string, now time.Time) (time.Time, bool, error) {
	ms, err := s.client.Get(ctx, s.blockKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}

	if err != nil {
		return time.Time{}, false, fmt.Errorf("rate limit block: %w", err)
	}

	until := time.UnixMilli(ms)
	if !until.After(now) {
		return time.Time{}, false, nil
	}

	return until, true, nil
}

// Shutdown is a no-op for RateLimitRedisStore (client managed externally).
func (s *RateLimitRedisStore) Shutdown() error {
	return nil
}

func (s *RateLimitRedisStore) timestampsKey(key string) string {
	return s.prefix + "{" + key + "}:ts"
}

func (s *RateLimitRedisStore) blockKey(key string) string {
	return s.prefix + "{" + key + "}:block"
}

// Compile-time checks.
var (
	_ ratelimit.Store         = (*RateLimitRedisStore)(nil)
	_ ratelimit.BlockReporter = (*RateLimitRedisStore)(nil)
)
