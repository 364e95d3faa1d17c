package container

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/directory"
	"github.com/serroba/wastefinder/internal/messaging"
	"github.com/serroba/wastefinder/internal/metrics"
	"github.com/serroba/wastefinder/internal/store"
	"go.uber.org/zap"
)

func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*metrics.Collector, error) {
		return metrics.New(), nil
	})
}

// DatastorePackage provides the persistence backend selected by Options.Backend and the
// cached store over it. Empty keys are seeded with the directory defaults.
func DatastorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (datastore.Backend, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.Backend {
		case BackendRedis:
			client := do.MustInvoke[*RedisClient](i)

			return store.NewRedisKV(client.Client), nil
		case BackendPostgres:
			pool, err := do.Invoke[*PostgresPool](i)
			if err != nil {
				return nil, err
			}

			kv := store.NewPostgresKV(pool.Pool)

			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			defer cancel()

			if err := kv.EnsureSchema(ctx); err != nil {
				return nil, fmt.Errorf("ensure kv schema: %w", err)
			}

			return kv, nil
		default:
			return store.NewMemoryKV(), nil
		}
	})

	do.Provide(i, func(i *do.Injector) (*datastore.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i).Named("datastore")
		backend := do.MustInvoke[datastore.Backend](i)
		collector := do.MustInvoke[*metrics.Collector](i)

		storeOpts := []datastore.Option{
			datastore.WithMetrics(collector),
			datastore.WithDefaultTTL(seconds(opts.CacheTTL)),
		}

		if opts.EventsEnabled {
			publishers := do.MustInvoke[*messaging.PublisherGroup](i)
			publish := messaging.NewPublishFunc[datastore.ChangeEvent](publishers.Publisher(), datastore.TopicChanged)
			storeOpts = append(storeOpts, datastore.WithChangePublisher(publish, uuid.NewString()))
		}

		s := datastore.New(backend, logger, storeOpts...)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := s.Seed(ctx, directory.Defaults()); err != nil {
			logger.Warn("seeding defaults failed", zap.Error(err))
		}

		return s, nil
	})
}
