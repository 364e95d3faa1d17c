package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultCleanupInterval is how often the janitor sweeps idle clients.
	DefaultCleanupInterval = 10 * time.Minute
	// DefaultStaleAfter is the minimum age of history the sweep discards.
	DefaultStaleAfter = 5 * time.Minute
)

// ErrJanitorStarted is returned by Start when the sweep loop is already running.
var ErrJanitorStarted = errors.New("janitor already started")

// Janitor periodically sweeps a store so memory stays bounded under client churn.
type Janitor struct {
	sweeper    Sweeper
	interval   time.Duration
	staleAfter time.Duration
	logger     *zap.Logger
	now        func() time.Time
	tracked    func(n int)

	mu     sync.Mutex // guards cancel
	cancel context.CancelFunc
	done   chan struct{}
}

// NewJanitor creates a janitor. Non-positive durations fall back to the defaults.
func NewJanitor(sweeper Sweeper, interval, staleAfter time.Duration, logger *zap.Logger) *Janitor {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	return &Janitor{
		sweeper:    sweeper,
		interval:   interval,
		staleAfter: staleAfter,
		logger:     logger,
		now:        time.Now,
		done:       make(chan struct{}),
	}
}

// OnSweep registers fn to receive the number of clients still tracked after each sweep.
// It only fires for sweepers that report their size with a Len method.
func (j *Janitor) OnSweep(fn func(tracked int)) *Janitor {
	j.tracked = fn

	return j
}

// Start launches the sweep loop. A janitor runs at most once; later calls fail with
// ErrJanitorStarted.
func (j *Janitor) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.cancel != nil {
		return ErrJanitorStarted
	}

	ctx, j.cancel = context.WithCancel(ctx)

	go j.loop(ctx)

	return nil
}

func (j *Janitor) loop(ctx context.Context) {
	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs a single cleanup pass.
func (j *Janitor) Sweep(ctx context.Context) {
	removed, err := j.sweeper.Sweep(ctx, j.now(), j.staleAfter)
	if err != nil {
		j.logger.Error("rate limit sweep failed", zap.Error(err))

		return
	}

	j.logger.Debug("rate limit sweep finished", zap.Int("removed", removed))

	if j.tracked == nil {
		return
	}

	if sized, ok := j.sweeper.(interface{ Len() int }); ok {
		j.tracked(sized.Len())
	}
}

// Shutdown stops the sweep loop and waits for it to exit.
func (j *Janitor) Shutdown() error {
	j.mu.Lock()
	cancel := j.cancel
	j.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	<-j.done

	return nil
}
