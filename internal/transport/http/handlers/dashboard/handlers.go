package dashboardhandler

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"kpiteam/internal/domain/auth"
	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/transport/http/api"
	"kpiteam/internal/transport/http/middleware"
)

// SnapshotSource supplies the data a dashboard is built from. *state.Store
// satisfies it.
type SnapshotSource interface {
	Snapshot() kpi.Dataset
}

type Handler struct {
	Source SnapshotSource
	now    func() time.Time
}

func NewHandler(source SnapshotSource) *Handler {
	return &Handler{Source: source, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermDashboardRead))
		r.Get("/dashboard", h.handleDashboard)
		r.Get("/dashboard.pdf", h.handlePDF)
	})
}

func (h *Handler) build(r *http.Request) kpi.Dashboard {
	user, _ := middleware.GetUser(r.Context())
	filter := kpi.Filter{
		DepartmentID: r.URL.Query().Get("departmentId"),
		EmployeeID:   r.URL.Query().Get("employeeId"),
	}
	viewer := kpi.Viewer{EmployeeID: user.Employee.ID, Role: user.Employee.Role}
	return kpi.BuildDashboard(h.Source.Snapshot(), viewer, filter)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	api.Success(w, h.build(r), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePDF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := kpi.RenderDashboardPDF(&buf, h.build(r), h.now()); err != nil {
		slog.Warn("dashboard pdf failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render dashboard", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="kpi-dashboard.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
