package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// MockTransport stands in for a backend during offline development. Every
// call succeeds with no data after a short delay.
type MockTransport struct {
	delay time.Duration
}

func NewMockTransport(delay time.Duration) *MockTransport {
	return &MockTransport{delay: delay}
}

func (t *MockTransport) Name() string {
	return "mock"
}

func (t *MockTransport) Invoke(ctx context.Context, action string, _ any) (json.RawMessage, error) {
	if err := Sleep(ctx, t.delay); err != nil {
		return nil, &TransportError{Action: action, Err: err}
	}
	slog.Warn("mocked remote call", "action", action)
	return nil, nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
