package messaging

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Runnable represents a component that can be started and shutdown.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// Group manages background components with a unified lifecycle.
// Closers, such as the subscriber the consumers share, are closed after every member stopped.
type Group struct {
	members []Runnable
	closers []io.Closer
	logger  *zap.Logger
}

// NewGroup creates a new group.
func NewGroup(logger *zap.Logger, closers ...io.Closer) *Group {
	return &Group{
		closers: closers,
		logger:  logger,
	}
}

// Add registers a member to the group.
func (g *Group) Add(member Runnable) {
	g.members = append(g.members, member)
}

// Len returns the number of registered members.
func (g *Group) Len() int {
	return len(g.members)
}

// Start starts all members in registration order.
func (g *Group) Start(ctx context.Context) error {
	for i, member := range g.members {
		if err := member.Start(ctx); err != nil {
			// Shutdown already started members on failure
			for j := i - 1; j >= 0; j-- {
				_ = g.members[j].Shutdown()
			}

			return fmt.Errorf("failed to start member %d: %w", i, err)
		}
	}

	g.logger.Info("background group started", zap.Int("count", len(g.members)))

	return nil
}

// Shutdown stops all members, then releases the closers.
func (g *Group) Shutdown() error {
	g.logger.Info("shutting down background group")

	var firstErr error

	for _, member := range g.members {
		if err := member.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, closer := range g.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
