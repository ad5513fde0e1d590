// Package shutdown ties process lifetime to OS signals and runs ordered cleanup on exit.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// WithSignals returns a context cancelled on the first SIGINT or SIGTERM, or on the given signals.
func WithSignals(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)

	go func() {
		defer signal.Stop(ch)
		select {
		case <-ctx.Done():
			return
		case <-ch:
			cancel()
		}
	}()

	return ctx, cancel
}

// Hook releases one resource. Hooks run in registration order.
type Hook struct {
	Name string
	Stop func(ctx context.Context) error
}

// Run calls every hook under a shared timeout and joins their errors, each prefixed with the hook name.
func Run(timeout time.Duration, hooks ...Hook) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, h := range hooks {
		if err := h.Stop(ctx); err != nil {
			errs = append(errs, &hookError{name: h.Name, err: err})
		}
	}

	return errors.Join(errs...)
}

type hookError struct {
	name string
	err  error
}

func (e *hookError) Error() string { return e.name + ": " + e.err.Error() }

func (e *hookError) Unwrap() error { return e.err }
