package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// HostHandle is an embedding-provided RPC object. Run invokes the named
// function with positional arguments and reports the outcome through exactly
// one of the callbacks, possibly from another goroutine.
type HostHandle interface {
	Run(name string, args []any, onSuccess func(result any), onFailure func(err error))
}

// HostFunc adapts a plain function to HostHandle, running it on its own
// goroutine.
type HostFunc func(name string, args []any) (any, error)

func (f HostFunc) Run(name string, args []any, onSuccess func(any), onFailure func(error)) {
	go func() {
		result, err := f(name, args)
		if err != nil {
			onFailure(err)
			return
		}
		onSuccess(result)
	}()
}

type hostResult struct {
	value any
	err   error
}

type HostTransport struct {
	handle  HostHandle
	timeout time.Duration
}

func NewHostTransport(handle HostHandle, timeout time.Duration) *HostTransport {
	return &HostTransport{handle: handle, timeout: timeout}
}

func (t *HostTransport) Name() string {
	return "host"
}

func (t *HostTransport) Invoke(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	var args []any
	if payload != nil {
		args = []any{payload}
	}

	// Buffered so a callback arriving after the timeout never blocks the host.
	done := make(chan hostResult, 1)
	t.handle.Run(action, args,
		func(v any) {
			select {
			case done <- hostResult{value: v}:
			default:
			}
		},
		func(err error) {
			if err == nil {
				err = errors.New("host reported failure")
			}
			select {
			case done <- hostResult{err: err}:
			default:
			}
		},
	)

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, &TransportError{Action: action, Err: res.err}
		}
		return encodeHostValue(action, res.value)
	case <-timer.C:
		return nil, &TimeoutError{Action: action, After: t.timeout}
	case <-ctx.Done():
		return nil, &TransportError{Action: action, Err: ctx.Err()}
	}
}

func encodeHostValue(action string, v any) (json.RawMessage, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return val, nil
	case []byte:
		return json.RawMessage(val), nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &TransportError{Action: action, Err: fmt.Errorf("encode host result: %w", err)}
	}
	return raw, nil
}
