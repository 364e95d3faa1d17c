package container

import (
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/directory"
	"github.com/serroba/wastefinder/internal/handlers"
	"github.com/serroba/wastefinder/internal/health"
	"github.com/serroba/wastefinder/internal/metrics"
	"github.com/serroba/wastefinder/internal/middleware"
	"github.com/serroba/wastefinder/internal/ratelimit"
	"go.uber.org/zap"
)

// HTTPPackage provides the chi router and the huma API with every route registered.
// Resolving huma.API performs the registration.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		collector := do.MustInvoke[*metrics.Collector](i)
		limiter := do.MustInvoke[*ratelimit.Limiter](i)
		s := do.MustInvoke[*datastore.Store](i)

		if opts.AdminToken == "" {
			logger.Warn("no admin token configured, admin operations are disabled")
		}

		proxies, err := opts.trustedProxies()
		if err != nil {
			return nil, err
		}

		if proxies.Len() > 0 {
			logger.Info("trusting forwarding headers", zap.String("proxies", opts.TrustedProxies))
		}

		api := humachi.New(router, huma.DefaultConfig("WasteFinder API", "1.0.0"))

		api.UseMiddleware(middleware.RequestMeta(api, proxies.ClientIP))
		api.UseMiddleware(middleware.RateLimit(
			api, limiter, ratelimit.NewOperationResolver(), logger.Named("ratelimit"),
			middleware.WithKeyFunc(proxies.ClientIP),
			middleware.WithDecisionRecorder(collector),
		))
		api.UseMiddleware(middleware.RequireAdmin(api, opts.AdminToken, logger,
			middleware.WithFailureLimit(limiter, proxies.ClientIP),
		))

		h, err := newHandlers(s, opts.AdminToken, logger)
		if err != nil {
			return nil, err
		}

		handlers.RegisterRoutes(api, h)
		health.RegisterRoutes(api, health.NewHandler(healthCheckers(i, opts)))

		router.Handle("/metrics", collector.Handler())

		return api, nil
	})
}

func newHandlers(s *datastore.Store, adminToken string, logger *zap.Logger) (handlers.Handlers, error) {
	newID, err := handlers.NewIDGenerator(handlers.IDLength)
	if err != nil {
		return handlers.Handlers{}, fmt.Errorf("create id generator: %w", err)
	}

	locations := datastore.NewCollection[directory.Facility](s, directory.KeyLocations)

	return handlers.Handlers{
		Facilities: handlers.NewFacilityHandler(locations, newID, time.Now, logger),
		Suggestions: handlers.NewSuggestionHandler(
			datastore.NewCollection[directory.Suggestion](s, directory.KeyPendingSuggestions),
			locations, newID, time.Now, logger,
		),
		Blog: handlers.NewBlogHandler(
			datastore.NewCollection[directory.BlogPost](s, directory.KeyBlogPosts),
			datastore.NewCollection[directory.BlogCategory](s, directory.KeyBlogCategories),
			newID, time.Now, logger,
		),
		Settings: handlers.NewSettingsHandler(
			datastore.NewValue[directory.SiteSettings](s, directory.KeySiteSettings),
			datastore.NewValue[directory.AdSettings](s, directory.KeyAdSettings),
			datastore.NewValue[directory.SEOSettings](s, directory.KeySEOSettings),
			logger,
		),
		Auth: handlers.NewAuthHandler(adminToken, logger),
	}, nil
}

func healthCheckers(i *do.Injector, opts *Options) map[string]health.Checker {
	checkers := make(map[string]health.Checker)

	if opts.usesRedis() {
		checkers["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
	}

	if opts.Backend == BackendPostgres {
		checkers["postgres"] = health.NewPostgresChecker(do.MustInvoke[*PostgresPool](i).Pool)
	}

	return checkers
}
