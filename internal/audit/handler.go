package audit

import (
	"context"
	"errors"

	"github.com/serroba/wastefinder/internal/datastore"
	"github.com/serroba/wastefinder/internal/messaging"
	"go.uber.org/zap"
)

var errMissingKey = errors.New("change event without key")

// NewHandler returns a consumer handler writing each event to store.
// Events without a key are logged and skipped.
func NewHandler(store Store, logger *zap.Logger) messaging.Handler[datastore.ChangeEvent] {
	return func(ctx context.Context, event *datastore.ChangeEvent) error {
		if event.Key == "" {
			logger.Warn("skipping change event", zap.Error(errMissingKey), zap.String("origin", event.Origin))

			return nil
		}

		return store.Save(ctx, event)
	}
}
