package authhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpiteam/internal/domain/auth"
	"kpiteam/internal/transport/http/api"
	"kpiteam/internal/transport/http/middleware"
	"kpiteam/internal/transport/http/shared"
)

type SessionService interface {
	Login(ctx context.Context, identifier, password string) (auth.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type Handler struct {
	Sessions SessionService
}

func NewHandler(sessions SessionService) *Handler {
	return &Handler{Sessions: sessions}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.With(middleware.RequireAuth).Post("/auth/logout", h.HandleLogout)
	r.With(middleware.RequireAuth).Get("/auth/me", h.HandleMe)
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !api.Decode(w, r, &payload, reqID) {
		return
	}

	v := shared.NewValidator()
	v.Required("identifier", payload.Identifier, "employee code or email is required")
	v.Required("password", payload.Password, "is required")
	if v.Reject(w, reqID) {
		return
	}

	sess, err := h.Sessions.Login(r.Context(), payload.Identifier, payload.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid employee code/email or password", reqID)
		return
	}
	if err != nil {
		slog.Warn("login failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to start session", reqID)
		return
	}

	api.Success(w, map[string]any{
		"token":       sess.Token,
		"expiresAt":   sess.ExpiresAt,
		"user":        sess.Employee,
		"permissions": auth.RolePermissions[sess.Employee.Role],
	}, reqID)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	if err := h.Sessions.Logout(r.Context(), user.SessionID); err != nil {
		slog.Warn("logout failed", "employeeId", user.Employee.ID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "session_error", "failed to end session", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "logged_out"}, reqID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, map[string]any{
		"user":        user.Employee.Public(),
		"permissions": auth.RolePermissions[user.Employee.Role],
	}, middleware.GetRequestID(r.Context()))
}
