package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpiteam/internal/platform/config"
)

func TestHTTPTransportSendsPlainTextEnvelope(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "text/plain;charset=utf-8", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"status":"ok","data":{"id":"d1"}}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, time.Second)
	data, err := tr.Invoke(context.Background(), ActionSaveDepartment, map[string]string{"id": "d1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"d1"}`, string(data))
	assert.Equal(t, ActionSaveDepartment, got.Action)
	assert.Equal(t, map[string]any{"id": "d1"}, got.Payload)
}

func TestHTTPTransportRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"sheet locked"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPTransport(srv.URL, 0).Invoke(context.Background(), ActionSaveKPI, nil)
	var remoteErr *RemoteActionError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "sheet locked", remoteErr.Message)
	assert.Equal(t, ActionSaveKPI, remoteErr.Action)
}

func TestHTTPTransportFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>login</html>"))
		}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			_, err := NewHTTPTransport(srv.URL, 0).Invoke(context.Background(), ActionGetAllData, nil)
			var transportErr *TransportError
			require.ErrorAs(t, err, &transportErr)
			assert.Equal(t, ActionGetAllData, transportErr.Action)
		})
	}
}

func TestHTTPTransportUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPTransport(url, time.Second).Invoke(context.Background(), ActionGetAllData, nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestHostTransportSuccess(t *testing.T) {
	var gotArgs []any
	host := HostFunc(func(name string, args []any) (any, error) {
		gotArgs = args
		return map[string]any{"action": name}, nil
	})
	data, err := NewHostTransport(host, time.Second).Invoke(context.Background(), ActionDeleteKPI, "k1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"deleteKPI"}`, string(data))
	assert.Equal(t, []any{"k1"}, gotArgs)
}

func TestHostTransportFailure(t *testing.T) {
	host := HostFunc(func(string, []any) (any, error) {
		return nil, errors.New("script error")
	})
	_, err := NewHostTransport(host, time.Second).Invoke(context.Background(), ActionSaveRecord, nil)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.EqualError(t, transportErr.Err, "script error")
}

type silentHost struct {
	success func(any)
}

func (h *silentHost) Run(_ string, _ []any, onSuccess func(any), _ func(error)) {
	h.success = onSuccess
}

func TestHostTransportTimeout(t *testing.T) {
	host := &silentHost{}
	_, err := NewHostTransport(host, 20*time.Millisecond).Invoke(context.Background(), ActionGetAllData, nil)
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, ActionGetAllData, timeoutErr.Action)
	assert.Contains(t, err.Error(), "getAllData")

	// A late callback must not block.
	host.success("late")
}

func TestMockTransportResolvesWithNoData(t *testing.T) {
	start := time.Now()
	data, err := NewMockTransport(10*time.Millisecond).Invoke(context.Background(), ActionSaveKPI, nil)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestMockTransportHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockTransport(time.Hour).Invoke(ctx, ActionSaveKPI, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFromConfigSelection(t *testing.T) {
	host := HostFunc(func(string, []any) (any, error) { return nil, nil })
	cases := []struct {
		name      string
		cfg       config.Config
		host      HostHandle
		mode      string
		connected bool
		wantErr   bool
	}{
		{"auto prefers http", config.Config{Transport: config.TransportAuto, APIURL: "http://x"}, host, "http", true, false},
		{"auto falls back to host", config.Config{Transport: config.TransportAuto}, host, "host", true, false},
		{"auto falls back to mock", config.Config{Transport: config.TransportAuto}, nil, "mock", false, false},
		{"explicit mock with url", config.Config{Transport: config.TransportMock, APIURL: "http://x"}, nil, "mock", false, false},
		{"host without handle", config.Config{Transport: config.TransportHost}, nil, "", false, true},
		{"http without url", config.Config{Transport: config.TransportHTTP}, nil, "", false, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			b, err := FromConfig(tc.cfg, tc.host, nil)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.mode, b.Mode())
			assert.Equal(t, tc.connected, b.Connected())
		})
	}
}

type failingTransport struct{ err error }

func (f failingTransport) Name() string { return "fake" }
func (f failingTransport) Invoke(context.Context, string, any) (json.RawMessage, error) {
	return nil, f.err
}

func TestBridgePropagatesErrors(t *testing.T) {
	want := &RemoteActionError{Action: ActionSaveKPI, Message: "nope"}
	b := New(failingTransport{err: want}, nil)
	_, err := b.Invoke(context.Background(), ActionSaveKPI, nil)
	require.ErrorIs(t, err, want)
	assert.Equal(t, "remote_error", outcome(err))
	assert.Equal(t, "timeout", outcome(&TimeoutError{}))
	assert.Equal(t, "ok", outcome(nil))
}
