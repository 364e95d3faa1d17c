// Package metrics exposes prometheus collectors for rate limiting decisions and cache usage.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wastefinder"

const (
	labelPreset  = "preset"
	labelOutcome = "outcome"
	labelKey     = "key"
)

// Decision outcomes.
const (
	OutcomeAllowed = "allowed"
	OutcomeLimited = "limited"
	OutcomeError   = "error"
)

// Collector holds every collector the service reports.
type Collector struct {
	RateLimitDecisions *prometheus.CounterVec
	TrackedClients     prometheus.Gauge
	CacheHits          *prometheus.CounterVec
	CacheMisses        *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors and registers them on a dedicated registry.
func New() *Collector {
	c := &Collector{
		RateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_decisions_total",
			Help:      "Number of rate limit decisions by preset and outcome.",
		}, []string{labelPreset, labelOutcome}),
		TrackedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ratelimit_tracked_clients",
			Help:      "Number of client counters held in memory after the last sweep.",
		}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Number of reads served from the cache.",
		}, []string{labelKey}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Number of reads that went to the backend.",
		}, []string{labelKey}),
		registry: prometheus.NewRegistry(),
	}

	c.registry.MustRegister(
		c.RateLimitDecisions,
		c.TrackedClients,
		c.CacheHits,
		c.CacheMisses,
	)

	return c
}

// Registry returns the registry holding the collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// IncHits counts a cache hit for key.
func (c *Collector) IncHits(key string) {
	c.CacheHits.WithLabelValues(key).Inc()
}

// IncMisses counts a cache miss for key.
func (c *Collector) IncMisses(key string) {
	c.CacheMisses.WithLabelValues(key).Inc()
}

// ObserveDecision counts a rate limiting decision.
func (c *Collector) ObserveDecision(preset, outcome string) {
	c.RateLimitDecisions.WithLabelValues(preset, outcome).Inc()
}

// SetTrackedClients records the number of tracked clients.
func (c *Collector) SetTrackedClients(n int) {
	c.TrackedClients.Set(float64(n))
}
