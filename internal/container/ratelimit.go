package container

import (
	"github.com/samber/do"
	"github.com/serroba/wastefinder/internal/ratelimit"
	"github.com/serroba/wastefinder/internal/store"
)

func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.RateLimitBackend == BackendRedis {
			client := do.MustInvoke[*RedisClient](i)

			return store.NewRateLimitRedisStore(client.Client), nil
		}

		return store.NewRateLimitMemoryStore(), nil
	})

	do.Provide(i, func(i *do.Injector) (*ratelimit.Limiter, error) {
		return ratelimit.NewLimiter(do.MustInvoke[ratelimit.Store](i)), nil
	})
}
