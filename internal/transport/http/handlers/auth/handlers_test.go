package authhandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"kpiteam/internal/domain/auth"
	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/transport/http/middleware"
)

type seedEmployees struct{}

func (seedEmployees) Employees() []kpi.Employee {
	return kpi.Seed().Employees
}

func newRouter() *chi.Mux {
	sessions := auth.NewSessions(auth.NewMemorySlot(), seedEmployees{}, "test-secret", time.Hour)
	router := chi.NewRouter()
	router.Use(middleware.Auth(sessions))
	NewHandler(sessions).RegisterRoutes(router)
	return router
}

func call(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginMeLogout(t *testing.T) {
	router := newRouter()

	rec := call(t, router, http.MethodPost, "/auth/login", "", `{"identifier":" ALICE@example.com ","password":"123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Data struct {
			Token       string       `json:"token"`
			User        kpi.Employee `json:"user"`
			Permissions []string     `json:"permissions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Data.Token == "" || login.Data.User.ID != "e1" {
		t.Fatalf("unexpected login payload %+v", login.Data)
	}
	if login.Data.User.Password != "" {
		t.Fatalf("password leaked in login response")
	}
	if len(login.Data.Permissions) != len(auth.RolePermissions[kpi.RoleManager]) {
		t.Fatalf("expected manager permissions, got %v", login.Data.Permissions)
	}

	rec = call(t, router, http.MethodGet, "/auth/me", login.Data.Token, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":"e1"`) {
		t.Fatalf("expected me to return e1, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = call(t, router, http.MethodPost, "/auth/logout", login.Data.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected logout 200, got %d", rec.Code)
	}

	rec = call(t, router, http.MethodGet, "/auth/me", login.Data.Token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestLoginFailures(t *testing.T) {
	router := newRouter()
	cases := []struct {
		name string
		body string
		code int
	}{
		{name: "wrong password", body: `{"identifier":"001","password":"nope"}`, code: http.StatusUnauthorized},
		{name: "missing identifier", body: `{"password":"123"}`, code: http.StatusBadRequest},
		{name: "malformed", body: `{"identifier":`, code: http.StatusBadRequest},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := call(t, router, http.MethodPost, "/auth/login", "", tc.body)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}
