package container

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/do"
	"github.com/serroba/wastefinder/internal/audit"
	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/messaging"
	"github.com/serroba/wastefinder/internal/metrics"
	"github.com/serroba/wastefinder/internal/ratelimit"
	"go.uber.org/zap"
)

// AuditConsumerGroup is the Redis streams consumer group shared by audit consumers.
const AuditConsumerGroup = "audit"

func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := messaging.NewRedisPublisher(client.Client, logger)
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// BackgroundPackage provides the server's background group: the rate limit janitor for
// stores that need sweeping, and the cache invalidation consumer when events are enabled.
func BackgroundPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.Group, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var (
			members []messaging.Runnable
			closers []io.Closer
		)

		if sweeper, ok := do.MustInvoke[ratelimit.Store](i).(ratelimit.Sweeper); ok {
			collector := do.MustInvoke[*metrics.Collector](i)
			janitor := ratelimit.NewJanitor(
				sweeper,
				seconds(opts.CleanupInterval),
				seconds(opts.StaleAfter),
				logger.Named("janitor"),
			).OnSweep(collector.SetTrackedClients)

			members = append(members, janitor)
		}

		if opts.EventsEnabled {
			client := do.MustInvoke[*RedisClient](i)
			s := do.MustInvoke[*datastore.Store](i)

			// No consumer group: every instance must see every change.
			subscriber, err := messaging.NewRedisSubscriber(client.Client, "", logger)
			if err != nil {
				return nil, fmt.Errorf("create subscriber: %w", err)
			}

			members = append(members, messaging.NewConsumer(
				subscriber, datastore.TopicChanged, s.HandleChange, logger.Named("invalidation"),
			))
			closers = append(closers, subscriber)
		}

		group := messaging.NewGroup(logger, closers...)
		for _, m := range members {
			group.Add(m)
		}

		return group, nil
	})
}

// AuditPackage provides the consumer process's group writing change events to the audit
// store. Events go to Postgres when a database url is configured.
func AuditPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (audit.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.DatabaseURL == "" {
			logger.Info("no database configured, audit events are only logged")

			return audit.NewNoop(logger), nil
		}

		pool, err := do.Invoke[*PostgresPool](i)
		if err != nil {
			return nil, err
		}

		auditStore := audit.NewPostgresStore(pool.Pool)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := auditStore.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure audit schema: %w", err)
		}

		return auditStore, nil
	})

	do.Provide(i, func(i *do.Injector) (*messaging.Group, error) {
		client := do.MustInvoke[*RedisClient](i)
		logger := do.MustInvoke[*zap.Logger](i)
		auditStore := do.MustInvoke[audit.Store](i)

		subscriber, err := messaging.NewRedisSubscriber(client.Client, AuditConsumerGroup, logger)
		if err != nil {
			return nil, fmt.Errorf("create subscriber: %w", err)
		}

		group := messaging.NewGroup(logger, subscriber)
		group.Add(messaging.NewConsumer(
			subscriber,
			datastore.TopicChanged,
			audit.NewHandler(auditStore, logger),
			logger.Named("audit"),
		))

		return group, nil
	})
}
