package middleware

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/wastefinder/internal/metrics"
	"github.com/serroba/wastefinder/internal/ratelimit"
	"go.uber.org/zap"
)

// Rate limit response headers.
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// KeyFunc derives the client identifier a request is counted under.
type KeyFunc func(ctx huma.Context) string

// DecisionRecorder counts rate limiting decisions.
type DecisionRecorder interface {
	ObserveDecision(preset, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveDecision(string, string) {}

// RateLimitOption customizes the rate limit middleware.
type RateLimitOption func(*rateLimitConfig)

type rateLimitConfig struct {
	keyFunc  KeyFunc
	recorder DecisionRecorder
}

// WithKeyFunc replaces the client IP as the rate limit identity.
func WithKeyFunc(fn KeyFunc) RateLimitOption {
	return func(c *rateLimitConfig) {
		if fn != nil {
			c.keyFunc = fn
		}
	}
}

// WithDecisionRecorder reports every decision to r.
func WithDecisionRecorder(r DecisionRecorder) RateLimitOption {
	return func(c *rateLimitConfig) {
		if r != nil {
			c.recorder = r
		}
	}
}

// limitedBody is the JSON body of a rejected request.
type limitedBody struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int64  `json:"retryAfter"`
}

// RateLimit returns a Huma middleware applying the sliding window limiter.
//
// The resolver picks the preset for each operation (see ratelimit.EndpointConfig).
// Counters are kept per preset and client, so reads do not consume the quota of auth attempts.
// Accepted requests get X-RateLimit-* headers; rejected ones get 429 with a Retry-After header.
// Store failures answer 500.
func RateLimit(
	api huma.API,
	limiter *ratelimit.Limiter,
	resolver ratelimit.Resolver,
	logger *zap.Logger,
	opts ...RateLimitOption,
) func(ctx huma.Context, next func(huma.Context)) {
	cfg := rateLimitConfig{
		keyFunc:  ClientIP,
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		policy, ok := resolver.Resolve(ctx)
		if !ok {
			next(ctx)

			return
		}

		client := cfg.keyFunc(ctx)
		key := string(policy.Preset) + ":" + client

		res, err := limiter.Check(ctx.Context(), key, policy.Rule)
		if err != nil {
			cfg.recorder.ObserveDecision(string(policy.Preset), metrics.OutcomeError)
			logger.Error("rate limit check failed",
				zap.String("path", operationPath(ctx)),
				zap.String("preset", string(policy.Preset)),
				zap.Error(err),
			)
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if res.Limited {
			cfg.recorder.ObserveDecision(string(policy.Preset), metrics.OutcomeLimited)
			logger.Warn("rate limit exceeded",
				zap.String("path", operationPath(ctx)),
				zap.String("method", ctx.Method()),
				zap.String("preset", string(policy.Preset)),
				zap.String("client", client),
				zap.Int("count", res.Count),
				zap.Int("max", policy.Rule.MaxRequests),
				zap.Duration("retry_after", res.RetryAfter),
			)
			writeLimited(ctx, policy.Message, res.RetryAfter)

			return
		}

		cfg.recorder.ObserveDecision(string(policy.Preset), metrics.OutcomeAllowed)

		ctx.SetHeader(HeaderLimit, strconv.Itoa(policy.Rule.MaxRequests))
		ctx.SetHeader(HeaderRemaining, strconv.Itoa(res.Remaining))
		ctx.SetHeader(HeaderReset, strconv.FormatInt(res.ResetAt.Unix(), 10))

		next(ctx)
	}
}

func writeLimited(ctx huma.Context, message string, retryAfter time.Duration) {
	secs := retryAfterSeconds(retryAfter)

	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetHeader(HeaderRetryAfter, strconv.FormatInt(secs, 10))
	ctx.SetStatus(http.StatusTooManyRequests)

	_ = json.NewEncoder(ctx.BodyWriter()).Encode(limitedBody{
		Success:    false,
		Error:      message,
		RetryAfter: secs,
	})
}

// retryAfterSeconds rounds up so clients never retry before the block ends.
func retryAfterSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}

	return int64(math.Ceil(d.Seconds()))
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
