package state

import (
	"context"
	"log/slog"
)

// logNotifier is used when no Notifier is configured.
type logNotifier struct{}

func (logNotifier) Alert(_ context.Context, message string) {
	slog.Warn("store alert", "message", message)
}
