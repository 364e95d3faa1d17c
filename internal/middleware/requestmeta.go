package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/wastefinder/internal/handlers"
)

// RequestMeta is a middleware that adds client IP, user-agent, and referrer to the request context.
// clientIP resolves the address; nil uses the connection peer.
func RequestMeta(_ huma.API, clientIP KeyFunc) func(ctx huma.Context, next func(huma.Context)) {
	if clientIP == nil {
		clientIP = ClientIP
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}
