package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"kpiteam/internal/transport/http/api"
)

// loginBodyPeek bounds how much of a login body is read to find the
// identifier.
const loginBodyPeek = 16 * 1024

type window struct {
	count int
	reset time.Time
}

// limiter is a fixed-window counter per key.
type limiter struct {
	mu     sync.Mutex
	limit  int
	period time.Duration
	now    func() time.Time
	keys   map[string]*window
}

func newLimiter(limit int, period time.Duration) *limiter {
	return &limiter{
		limit:  max(limit, 1),
		period: period,
		now:    time.Now,
		keys:   map[string]*window{},
	}
}

// take counts one hit for key and reports whether it is within the limit,
// along with the seconds until the window resets.
func (l *limiter) take(key string) (remaining, resetIn int, ok bool) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	win, found := l.keys[key]
	if !found || !now.Before(win.reset) {
		if len(l.keys) > 4096 {
			l.sweep(now)
		}
		win = &window{reset: now.Add(l.period)}
		l.keys[key] = win
	}
	win.count++
	resetIn = int(win.reset.Sub(now).Seconds())
	return max(l.limit-win.count, 0), max(resetIn, 1), win.count <= l.limit
}

func (l *limiter) sweep(now time.Time) {
	for key, win := range l.keys {
		if !now.Before(win.reset) {
			delete(l.keys, key)
		}
	}
}

func (l *limiter) enforce(w http.ResponseWriter, r *http.Request, key string) bool {
	remaining, resetIn, ok := l.take(key)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))
	if ok {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(resetIn))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// WriteRateLimit throttles the routes that change state. Login attempts get a
// quarter of perWindow, counted per client address and per identifier so one
// account cannot be guessed at from many hosts. Every other write gets half,
// counted per signed-in employee. Reads are not limited.
func WriteRateLimit(perWindow int, period time.Duration) func(http.Handler) http.Handler {
	loginByAddr := newLimiter(perWindow/4, period)
	loginByIdentifier := newLimiter(perWindow/4, period)
	writes := newLimiter(perWindow/2, period)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case !isWrite(r.Method):
			case strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/auth/login"):
				if !loginByAddr.enforce(w, r, "addr:"+clientAddr(r)) {
					return
				}
				if id := loginIdentifier(r); id != "" && !loginByIdentifier.enforce(w, r, "id:"+id) {
					return
				}
			default:
				if !writes.enforce(w, r, actorKey(r)) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func actorKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.Employee.ID != "" {
		return "employee:" + user.Employee.ID
	}
	return "addr:" + clientAddr(r)
}

func clientAddr(r *http.Request) string {
	if fwd, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(fwd) != "" {
		return strings.TrimSpace(fwd)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// loginIdentifier reads the employee code or email from a login body and
// puts the body back for the handler.
func loginIdentifier(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, loginBodyPeek))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
	var body struct {
		Identifier string `json:"identifier"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Identifier))
}
