// Package container wires the application's services into a samber/do injector.
package container

import (
	"fmt"
	"strings"
	"time"

	"github.com/serroba/wastefinder/internal/middleware"
)

// Backend names accepted by Options.Backend and Options.RateLimitBackend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options holds the service configuration. humacli maps each field to a flag and to a
// SERVICE_* environment variable.
type Options struct {
	Port             int    `default:"8888"           help:"Port to listen on"                                 short:"p"`
	RedisAddr        string `default:"localhost:6379" help:"Redis server address"                              short:"r"`
	DatabaseURL      string `default:""               help:"PostgreSQL connection string"                      short:"d"`
	Backend          string `default:"memory"         help:"Data backend: memory, redis or postgres"           short:"b"`
	RateLimitBackend string `default:"memory"         help:"Rate limit backend: memory or redis"`
	LogFormat        string `default:"console"        help:"Log format: console or json"`
	LogLevel         string `default:"info"           help:"Minimum log level"`
	CacheTTL         int    `default:"300"            help:"Data cache TTL in seconds"`
	CleanupInterval  int    `default:"600"            help:"Seconds between rate limit sweeps"`
	StaleAfter       int    `default:"300"            help:"Seconds after which idle rate limit history is dropped"`
	AdminToken       string `default:""               help:"Bearer token for admin operations"`
	EventsEnabled    bool   `default:"false"          help:"Publish and consume data change events over Redis streams"`
	TrustedProxies   string `default:""               help:"Comma separated proxy IPs or CIDRs whose X-Forwarded-For is trusted"`
}

// Validate reports unsupported option values.
func (o *Options) Validate() error {
	switch o.Backend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("unknown backend %q", o.Backend)
	}

	switch o.RateLimitBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown rate limit backend %q", o.RateLimitBackend)
	}

	if o.Backend == BackendPostgres && o.DatabaseURL == "" {
		return fmt.Errorf("backend %q requires a database url", o.Backend)
	}

	if _, err := o.trustedProxies(); err != nil {
		return err
	}

	return nil
}

func (o *Options) trustedProxies() (*middleware.TrustedProxies, error) {
	return middleware.ParseTrustedProxies(strings.Split(o.TrustedProxies, ",")...)
}

// usesRedis reports whether any component needs the Redis client.
func (o *Options) usesRedis() bool {
	return o.Backend == BackendRedis || o.RateLimitBackend == BackendRedis || o.EventsEnabled
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
