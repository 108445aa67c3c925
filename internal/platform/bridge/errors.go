package bridge

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoHostHandle = errors.New("host transport selected but no host handle was provided")

// TransportError reports that a request could not be completed.
type TransportError struct {
	Action string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("remote action %s: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a host call that did not call back in time.
type TimeoutError struct {
	Action string
	After  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("remote action %s timed out after %s", e.Action, e.After)
}

// RemoteActionError carries a failure reported by the backend itself.
type RemoteActionError struct {
	Action  string
	Message string
}

func (e *RemoteActionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote action %s failed", e.Action)
	}
	return fmt.Sprintf("remote action %s failed: %s", e.Action, e.Message)
}

// outcome labels an error for metrics.
func outcome(err error) string {
	var (
		transportErr *TransportError
		timeoutErr   *TimeoutError
		remoteErr    *RemoteActionError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &remoteErr):
		return "remote_error"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &transportErr):
		return "transport_error"
	}
	return "error"
}
