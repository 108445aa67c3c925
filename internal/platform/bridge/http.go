package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxResponseBytes caps the size of a remote reply.
const maxResponseBytes = 64 << 20

// HTTPTransport posts actions to a single endpoint. The body is sent as
// text/plain so browsers and script hosts skip the CORS pre-flight.
type HTTPTransport struct {
	url    string
	client *http.Client
}

// NewHTTPTransport builds a transport for url. A zero timeout leaves the
// request bounded only by the caller's context.
func NewHTTPTransport(url string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{url: url, client: &http.Client{Timeout: timeout}}
}

func (t *HTTPTransport) Name() string {
	return "http"
}

func (t *HTTPTransport) Invoke(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(Request{Action: action, Payload: payload})
	if err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("encode request: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Action: action, Err: err}
	}
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Action: action, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.Status == StatusError {
		return nil, &RemoteActionError{Action: action, Message: env.Message}
	}
	return env.Data, nil
}
