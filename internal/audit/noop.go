package audit

import (
	"context"

	"github.com/serroba/wastefinder/internal/datastore"
	"go.uber.org/zap"
)

// Noop is a Store that only logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new logging-only audit store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) Save(_ context.Context, event *datastore.ChangeEvent) error {
	n.logger.Info("store change received",
		zap.String("key", event.Key),
		zap.String("origin", event.Origin),
		zap.Time("changedAt", event.ChangedAt),
	)

	return nil
}
