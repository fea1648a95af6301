package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultPurgeInterval is how often expired refresh sessions are deleted.
const DefaultPurgeInterval = 15 * time.Minute

// Purger deletes expired refresh sessions.
type Purger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SessionJanitor periodically removes expired refresh sessions.
type SessionJanitor struct {
	purger   Purger
	interval time.Duration
	logger   *slog.Logger

	started bool
	cancel  context.CancelFunc
	done    chan struct{}
	mu      sync.Mutex
}

// NewSessionJanitor creates a SessionJanitor. A non-positive interval uses DefaultPurgeInterval.
func NewSessionJanitor(purger Purger, interval time.Duration, logger *slog.Logger) *SessionJanitor {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionJanitor{
		purger:   purger,
		interval: interval,
		logger:   logger.With("component", "session.janitor"),
	}
}

// Run purges once immediately and then on every tick until ctx is done or Shutdown is called.
func (j *SessionJanitor) Run(ctx context.Context) error {
	j.mu.Lock()
	if j.started {
		j.mu.Unlock()
		return errors.New("janitor already started")
	}
	j.started = true
	j.done = make(chan struct{})
	ctx, j.cancel = context.WithCancel(ctx)
	j.mu.Unlock()

	defer close(j.done)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.purge(ctx)
	for {
		select {
		case <-ctx.Done():
			j.logger.Info("session janitor stopping")
			return nil
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

// Shutdown stops the janitor and waits for the current purge to finish.
func (j *SessionJanitor) Shutdown(ctx context.Context) error {
	j.mu.Lock()
	if !j.started {
		j.mu.Unlock()
		return nil
	}
	cancel := j.cancel
	done := j.done
	j.mu.Unlock()

	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		j.logger.Warn("session janitor shutdown timed out")
		return ctx.Err()
	}
}

func (j *SessionJanitor) purge(ctx context.Context) {
	n, err := j.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			j.logger.Error("purge expired sessions failed", "error", err)
		}
		return
	}
	if n > 0 {
		j.logger.Info("purged expired sessions", "count", n)
	}
}
