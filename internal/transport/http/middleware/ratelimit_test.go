package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kpiteam/internal/domain/kpi"
)

func noContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func send(h http.Handler, method, path, addr, body string, viewer *kpi.Employee) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = addr
	if viewer != nil {
		req = req.WithContext(WithUser(context.Background(), User{Employee: *viewer}))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWriteRateLimitSkipsReads(t *testing.T) {
	limited := WriteRateLimit(4, time.Minute)(noContent())
	for i := 0; i < 6; i++ {
		if rec := send(limited, http.MethodGet, "/api/v1/dashboard", "198.51.100.40:8888", "", nil); rec.Code != http.StatusNoContent {
			t.Fatalf("read %d: expected 204, got %d", i+1, rec.Code)
		}
	}
}

func TestWriteRateLimitCountsPerEmployee(t *testing.T) {
	limited := WriteRateLimit(4, time.Minute)(noContent())
	bob := kpi.Employee{ID: "e2", Role: kpi.RoleEmployee}
	alice := kpi.Employee{ID: "e1", Role: kpi.RoleManager}

	cases := []struct {
		method string
		path   string
		addr   string
		viewer *kpi.Employee
		code   int
	}{
		{http.MethodPut, "/api/v1/records", "198.51.100.41:1", &bob, http.StatusNoContent},
		{http.MethodDelete, "/api/v1/records/r2", "198.51.100.42:2", &bob, http.StatusNoContent},
		{http.MethodPost, "/api/v1/state/refresh", "198.51.100.43:3", &bob, http.StatusTooManyRequests},
		{http.MethodPost, "/api/v1/state/refresh", "198.51.100.43:3", &alice, http.StatusNoContent},
	}
	for i, tc := range cases {
		rec := send(limited, tc.method, tc.path, tc.addr, `{}`, tc.viewer)
		if rec.Code != tc.code {
			t.Fatalf("request %d %s %s: expected %d, got %d", i+1, tc.method, tc.path, tc.code, rec.Code)
		}
	}
}

func TestWriteRateLimitKeysLoginByIdentifier(t *testing.T) {
	limited := WriteRateLimit(4, time.Minute)(noContent())
	body := `{"identifier":"Alice@Example.com","password":"x"}`

	if rec := send(limited, http.MethodPost, "/api/v1/auth/login", "203.0.113.1:1000", body, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected first attempt to pass, got %d", rec.Code)
	}
	rec := send(limited, http.MethodPost, "/api/v1/auth/login", "203.0.113.2:1000", strings.ToUpper(body), nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected same identifier from another host to be throttled, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatalf("expected retry metadata, got %v", rec.Header())
	}
}

func TestWriteRateLimitRestoresLoginBody(t *testing.T) {
	var seen string
	limited := WriteRateLimit(40, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		seen = string(raw)
		w.WriteHeader(http.StatusNoContent)
	}))
	body := `{"identifier":"001","password":"123"}`
	send(limited, http.MethodPost, "/api/v1/auth/login", "192.0.2.9:1", body, nil)
	if seen != body {
		t.Fatalf("expected handler to read the full body, got %q", seen)
	}
}

func TestLimiterWindowReset(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	l := newLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	if _, _, ok := l.take("k"); !ok {
		t.Fatalf("expected first hit to pass")
	}
	remaining, resetIn, ok := l.take("k")
	if ok || remaining != 0 || resetIn != 60 {
		t.Fatalf("expected second hit throttled with 60s reset, got ok=%v remaining=%d reset=%d", ok, remaining, resetIn)
	}

	now = now.Add(time.Minute)
	if _, _, ok := l.take("k"); !ok {
		t.Fatalf("expected hit after window reset to pass")
	}
}
