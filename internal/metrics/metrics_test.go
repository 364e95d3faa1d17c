package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/serroba/wastefinder/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counts cache hits and misses per key", func(t *testing.T) {
		c := metrics.New()

		c.IncHits("locations")
		c.IncHits("locations")
		c.IncMisses("locations")
		c.IncMisses("blogPosts")

		assert.InDelta(t, 2, testutil.ToFloat64(c.CacheHits.WithLabelValues("locations")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(c.CacheMisses.WithLabelValues("locations")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(c.CacheMisses.WithLabelValues("blogPosts")), 0)
	})

	t.Run("counts decisions by preset and outcome", func(t *testing.T) {
		c := metrics.New()

		c.ObserveDecision("auth", metrics.OutcomeAllowed)
		c.ObserveDecision("auth", metrics.OutcomeLimited)
		c.ObserveDecision("auth", metrics.OutcomeLimited)

		assert.InDelta(t, 1, testutil.ToFloat64(c.RateLimitDecisions.WithLabelValues("auth", metrics.OutcomeAllowed)), 0)
		assert.InDelta(t, 2, testutil.ToFloat64(c.RateLimitDecisions.WithLabelValues("auth", metrics.OutcomeLimited)), 0)
	})

	t.Run("sets tracked clients", func(t *testing.T) {
		c := metrics.New()

		c.SetTrackedClients(7)

		assert.InDelta(t, 7, testutil.ToFloat64(c.TrackedClients), 0)
	})

	t.Run("serves the registry", func(t *testing.T) {
		c := metrics.New()
		c.IncHits("siteSettings")

		rec := httptest.NewRecorder()
		c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `wastefinder_cache_hits_total{key="siteSettings"} 1`)
	})
}
