package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/nikolayk812/storefront/internal/port"
)

const DefaultCleanupInterval = time.Hour

// Cleaner periodically removes expired sessions and the carts they scoped.
type Cleaner struct {
	repo   port.SessionRepository
	logger *slog.Logger
	now    func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewCleaner(repo port.SessionRepository, logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Cleaner{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Cleanup runs one pass and returns the number of removed sessions.
func (c *Cleaner) Cleanup(ctx context.Context) (int64, error) {
	return c.repo.DeleteExpired(ctx, c.now().UTC())
}

// StartCleanupRoutine starts a goroutine running Cleanup every interval until Close.
// A non-positive interval falls back to DefaultCleanupInterval.
func (c *Cleaner) StartCleanupRoutine(interval time.Duration) {
	if interval <= 0 {
		c.logger.Warn("session cleanup interval is not positive, using default",
			slog.Duration("interval", interval),
			slog.Duration("default", DefaultCleanupInterval))
		interval = DefaultCleanupInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := c.Cleanup(ctx)
				if err != nil {
					c.logger.Warn("session cleanup failed", slog.Any("err", err))
					continue
				}
				if deleted > 0 {
					c.logger.Info("expired sessions removed", slog.Int64("count", deleted))
				}
			}
		}
	}()
}

// Close stops the cleanup goroutine and waits for it. Safe without StartCleanupRoutine.
func (c *Cleaner) Close() error {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	return nil
}
