package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/wastefinder/internal/handlers"
	"github.com/serroba/wastefinder/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testOutput struct {
	Body string `json:"body"`
}

func setupTestAPI(t *testing.T, clientIP middleware.KeyFunc) (*chi.Mux, huma.API) {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api, clientIP))

	return router, api
}

func captureMeta(t *testing.T, clientIP middleware.KeyFunc, configure func(r *http.Request)) handlers.RequestMeta {
	t.Helper()

	router, api := setupTestAPI(t, clientIP)

	metaChan := make(chan handlers.RequestMeta, 1)

	huma.Get(api, "/test", func(ctx context.Context, _ *struct{}) (*testOutput, error) {
		metaChan <- handlers.RequestMetaFromContext(ctx)

		return &testOutput{Body: "ok"}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	configure(req)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	return <-metaChan
}

func TestRequestMeta(t *testing.T) {
	proxies, err := middleware.ParseTrustedProxies("192.0.2.0/24")
	require.NoError(t, err)

	t.Run("extracts user-agent and referrer", func(t *testing.T) {
		meta := captureMeta(t, nil, func(r *http.Request) {
			r.Header.Set("User-Agent", "TestAgent/1.0")
			r.Header.Set("Referer", "https://example.com")
		})

		assert.Equal(t, "TestAgent/1.0", meta.UserAgent)
		assert.Equal(t, "https://example.com", meta.Referrer)
	})

	t.Run("ignores X-Forwarded-For without trusted proxies", func(t *testing.T) {
		meta := captureMeta(t, nil, func(r *http.Request) {
			r.RemoteAddr = "203.0.113.7:5555"
			r.Header.Set("X-Forwarded-For", "192.168.1.1")
		})

		assert.Equal(t, "203.0.113.7", meta.ClientIP)
	})

	t.Run("extracts client from X-Forwarded-For behind a trusted proxy", func(t *testing.T) {
		meta := captureMeta(t, proxies.ClientIP, func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "192.168.1.1, 192.0.2.10")
		})

		assert.Equal(t, "192.168.1.1", meta.ClientIP)
	})

	t.Run("extracts IP from X-Real-IP behind a trusted proxy", func(t *testing.T) {
		meta := captureMeta(t, proxies.ClientIP, func(r *http.Request) {
			r.Header.Set("X-Real-IP", "10.0.0.1")
		})

		assert.Equal(t, "10.0.0.1", meta.ClientIP)
	})

	t.Run("falls back to remote address when no IP headers present", func(t *testing.T) {
		meta := captureMeta(t, proxies.ClientIP, func(r *http.Request) {
			r.RemoteAddr = "203.0.113.7:5555"
		})

		assert.Equal(t, "203.0.113.7", meta.ClientIP)
	})
}
