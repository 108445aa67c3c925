package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kpiteam/internal/platform/config"
	"kpiteam/internal/platform/metrics"
)

// Transport executes one named remote action.
type Transport interface {
	Invoke(ctx context.Context, action string, payload any) (json.RawMessage, error)
	Name() string
}

// Bridge is the single entry point for remote actions. It never retries.
type Bridge struct {
	transport Transport
	metrics   *metrics.Collector
}

func New(t Transport, m *metrics.Collector) *Bridge {
	return &Bridge{transport: t, metrics: m}
}

// FromConfig selects the transport named by cfg.Transport. In auto mode the
// HTTP transport wins when an endpoint is configured, then the host handle
// when one is provided, then the mock.
func FromConfig(cfg config.Config, host HostHandle, m *metrics.Collector) (*Bridge, error) {
	mode := cfg.Transport
	if mode == "" || mode == config.TransportAuto {
		switch {
		case cfg.APIURL != "":
			mode = config.TransportHTTP
		case host != nil:
			mode = config.TransportHost
		default:
			mode = config.TransportMock
		}
	}

	var t Transport
	switch mode {
	case config.TransportHTTP:
		if cfg.APIURL == "" {
			return nil, fmt.Errorf("http transport requires KPI_API_URL")
		}
		t = NewHTTPTransport(cfg.APIURL, cfg.APITimeout)
	case config.TransportHost:
		if host == nil {
			return nil, ErrNoHostHandle
		}
		t = NewHostTransport(host, cfg.HostTimeout)
	case config.TransportMock:
		t = NewMockTransport(cfg.MockDelay)
	default:
		return nil, fmt.Errorf("unknown transport %q", mode)
	}
	return New(t, m), nil
}

func (b *Bridge) Mode() string {
	return b.transport.Name()
}

// Connected reports whether calls reach a real backend.
func (b *Bridge) Connected() bool {
	_, mock := b.transport.(*MockTransport)
	return !mock
}

func (b *Bridge) Invoke(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	start := time.Now()
	data, err := b.transport.Invoke(ctx, action, payload)
	b.metrics.BridgeCall(b.transport.Name(), action, outcome(err), time.Since(start))
	if err != nil {
		slog.Warn("remote action failed", "transport", b.transport.Name(), "action", action, "err", err)
		return nil, err
	}
	return data, nil
}
