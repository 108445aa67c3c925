package backendhandler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kpiteam/internal/platform/bridge"
)

// Dispatcher runs one remote action. The reference backend service
// satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, action string, payload json.RawMessage) (any, error)
}

type Handler struct {
	Service  Dispatcher
	MaxBytes int64
}

func NewHandler(service Dispatcher, maxBytes int64) *Handler {
	return &Handler{Service: service, MaxBytes: maxBytes}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.handleAction)
}

type actionRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// handleAction accepts the body regardless of Content-Type; callers send
// text/plain. Failures are reported in the envelope with a 200 status, the
// way the script host replies.
func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	body := io.Reader(r.Body)
	if h.MaxBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		writeEnvelope(w, nil, errors.New("request body too large or unreadable"))
		return
	}
	var req actionRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.Action == "" {
		writeEnvelope(w, nil, errors.New("body must be JSON {action, payload}"))
		return
	}

	data, err := h.Service.Dispatch(r.Context(), req.Action, req.Payload)
	if err != nil {
		slog.Warn("backend action failed", "action", req.Action, "err", err)
	}
	writeEnvelope(w, data, err)
}

func writeEnvelope(w http.ResponseWriter, data any, err error) {
	env := bridge.Envelope{Status: bridge.StatusOK}
	if err != nil {
		env.Status = bridge.StatusError
		env.Message = err.Error()
	} else if data != nil {
		encoded, mErr := json.Marshal(data)
		if mErr != nil {
			env.Status = bridge.StatusError
			env.Message = "encode response: " + mErr.Error()
		} else {
			env.Data = encoded
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Warn("write envelope failed", "err", err)
	}
}
