package middleware

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/wastefinder/internal/auth"
	"github.com/serroba/wastefinder/internal/ratelimit"
	"go.uber.org/zap"
)

// AdminOption customizes the admin middleware.
type AdminOption func(*adminConfig)

type adminConfig struct {
	limiter *ratelimit.Limiter
	keyFunc KeyFunc
}

// WithFailureLimit charges rejected admin credentials to the auth preset of the client
// resolved by keyFunc (nil uses the connection peer). Clients that exhaust it get 429,
// even with a valid token, until their block ends.
func WithFailureLimit(limiter *ratelimit.Limiter, keyFunc KeyFunc) AdminOption {
	return func(c *adminConfig) {
		c.limiter = limiter

		if keyFunc != nil {
			c.keyFunc = keyFunc
		}
	}
}

// RequireAdmin returns a Huma middleware guarding operations whose metadata sets
// auth.MetadataAdmin to true. Callers must send "Authorization: Bearer <token>".
// An empty token rejects every admin request.
func RequireAdmin(
	api huma.API,
	token string,
	logger *zap.Logger,
	opts ...AdminOption,
) func(ctx huma.Context, next func(huma.Context)) {
	cfg := adminConfig{keyFunc: ClientIP}
	for _, opt := range opts {
		opt(&cfg)
	}

	rule := ratelimit.RuleFor(ratelimit.PresetAuth)
	message := ratelimit.Messages[ratelimit.PresetAuth]

	return func(ctx huma.Context, next func(huma.Context)) {
		if !isAdminOperation(ctx) {
			next(ctx)

			return
		}

		client := cfg.keyFunc(ctx)
		key := string(ratelimit.PresetAuth) + ":" + client
		charged := false

		if cfg.limiter != nil {
			exhausted, err := cfg.limiter.Exhausted(ctx.Context(), key, rule)
			if err != nil {
				writeAdminStoreError(api, ctx, logger, err)

				return
			}

			if exhausted {
				res, err := cfg.limiter.Check(ctx.Context(), key, rule)
				if err != nil {
					writeAdminStoreError(api, ctx, logger, err)

					return
				}

				if res.Limited {
					logger.Warn("admin attempts exhausted",
						zap.String("path", operationPath(ctx)),
						zap.String("client", client),
						zap.Duration("retry_after", res.RetryAfter),
					)
					writeLimited(ctx, message, res.RetryAfter)

					return
				}

				// Capacity freed between the two reads, so this attempt is already counted.
				charged = true
			}
		}

		given, ok := auth.BearerToken(ctx.Header("Authorization"))
		if ok && auth.VerifyToken(token, given) {
			next(ctx)

			return
		}

		logger.Warn("admin authorization failed",
			zap.String("path", operationPath(ctx)),
			zap.String("client", client),
		)

		if cfg.limiter != nil && !charged {
			res, err := cfg.limiter.Check(ctx.Context(), key, rule)
			if err != nil {
				writeAdminStoreError(api, ctx, logger, err)

				return
			}

			if res.Limited {
				writeLimited(ctx, message, res.RetryAfter)

				return
			}
		}

		_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "admin authorization required")
	}
}

func writeAdminStoreError(api huma.API, ctx huma.Context, logger *zap.Logger, err error) {
	logger.Error("admin attempt check failed",
		zap.String("path", operationPath(ctx)),
		zap.Error(err),
	)
	_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)
}

func isAdminOperation(ctx huma.Context) bool {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return false
	}

	admin, _ := op.Metadata[auth.MetadataAdmin].(bool)

	return admin
}
