package cartclient

import (
	"context"
	"log/slog"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a user-facing message about the outcome of a cart action.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LogNotifier writes notifications to a slog logger, errors at warn level.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	level := slog.LevelInfo
	if n.Variant == VariantDestructive {
		level = slog.LevelWarn
	}

	logger.Log(ctx, level, n.Title, slog.String("description", n.Description))
}
