package statehandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"kpiteam/internal/domain/auth"
	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/domain/photo"
	"kpiteam/internal/domain/state"
	"kpiteam/internal/transport/http/api"
	"kpiteam/internal/transport/http/middleware"
	"kpiteam/internal/transport/http/shared"
)

// PhotoNormalizer rewrites an uploaded photo into the URL to persist.
type PhotoNormalizer interface {
	Normalize(ctx context.Context, employeeID, photoURL string) (string, error)
}

type Handler struct {
	Store  *state.Store
	Photos PhotoNormalizer
	now    func() time.Time
}

func NewHandler(store *state.Store, photos PhotoNormalizer) *Handler {
	return &Handler{Store: store, Photos: photos, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermStateRead)).Get("/state", h.handleState)
	r.With(middleware.RequirePermission(auth.PermStateRefresh)).Post("/state/refresh", h.handleRefresh)
	r.With(middleware.RequirePermission(auth.PermStateRead)).Get("/periods", h.handlePeriods)
	r.With(middleware.RequirePermission(auth.PermStateRead)).Get("/rubric", h.handleRubric)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermMasterDataWrite))
		r.Put("/departments", h.handleSaveDepartment)
		r.Delete("/departments/{id}", h.handleDelete(h.Store.DeleteDepartment))
		r.Put("/employees", h.handleSaveEmployee)
		r.Delete("/employees/{id}", h.handleDelete(h.Store.DeleteEmployee))
		r.Put("/kpis", h.handleSaveKPI)
		r.Delete("/kpis/{id}", h.handleDelete(h.Store.DeleteKPI))
		r.Put("/activities", h.handleSaveActivity)
		r.Delete("/activities/{id}", h.handleDelete(h.Store.DeleteActivity))
		r.Put("/assignments", h.handleSaveAssignment)
		r.Delete("/assignments/{id}", h.handleDelete(h.Store.DeleteAssignment))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermRecordsWrite))
		r.Put("/records", h.handleSaveRecord)
		r.Post("/records/upsert", h.handleUpsertRecord)
		r.Delete("/records/{id}", h.handleDeleteRecord)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(auth.PermCompetencyWrite))
		r.Put("/competency-records", h.handleSaveCompetencyRecord)
		r.Delete("/competency-records/{id}", h.handleDeleteCompetencyRecord)
		r.Post("/competency-assessments", h.handleCompetencyAssessment)
	})
}

type stateResponse struct {
	kpi.Dataset
	Loading   bool     `json:"loading"`
	IsDev     bool     `json:"isDev"`
	LastError string   `json:"lastError,omitempty"`
	Pending   []string `json:"pending"`
}

func (h *Handler) stateFor(viewer kpi.Employee) stateResponse {
	return stateResponse{
		Dataset:   auth.ScopeDataset(viewer, h.Store.Snapshot()),
		Loading:   h.Store.Loading(),
		IsDev:     h.Store.IsDev(),
		LastError: h.Store.LastError(),
		Pending:   h.Store.Pending(),
	}
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	api.Success(w, h.stateFor(user.Employee), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	h.Store.LoadAll(r.Context())
	api.Success(w, h.stateFor(user.Employee), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePeriods(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	period := kpi.PeriodType(r.URL.Query().Get("period"))
	if period == "" {
		period = kpi.PeriodMonthly
	}
	now := h.now()
	year := now.Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1000 || parsed > 9999 {
			api.Fail(w, http.StatusBadRequest, "invalid_year", "year must be a four digit number", reqID)
			return
		}
		year = parsed
	}
	options, err := kpi.PeriodOptions(period, year)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), reqID)
		return
	}
	current, _ := kpi.CurrentPeriodKey(period, now)
	api.Success(w, map[string]any{
		"period":  period,
		"year":    year,
		"options": options,
		"current": current,
	}, reqID)
}

func (h *Handler) handleRubric(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	kpiID := r.URL.Query().Get("kpiId")
	rawLevel := r.URL.Query().Get("level")

	v := shared.NewValidator()
	v.Required("kpiId", kpiID, "is required")
	v.Required("level", rawLevel, "is required")
	v.Level("level", rawLevel)
	if v.Reject(w, reqID) {
		return
	}
	level, _ := kpi.ParseLevel(rawLevel)

	target := kpi.KPI{ID: kpiID}
	for _, k := range h.Store.KPIs() {
		if k.ID == kpiID {
			target = k
			break
		}
	}
	api.Success(w, map[string]any{
		"kpiId": kpiID,
		"level": level,
		"text":  kpi.ResolveRubric(h.Store.LevelRules(), target, level),
	}, reqID)
}

// withID gives a new entity its id before validation so that the id-required
// rule only rejects payloads that explicitly blank an existing id.
func withID[T kpi.Entity[T]](item T) T {
	if item.EntityID() == "" {
		return item.WithEntityID(uuid.NewString())
	}
	return item
}

// decodeEntity reads, ids and validates an entity payload; false means a
// reply was already written.
func decodeEntity[T kpi.Entity[T]](w http.ResponseWriter, r *http.Request, dst *T) bool {
	reqID := middleware.GetRequestID(r.Context())
	if !api.Decode(w, r, dst, reqID) {
		return false
	}
	*dst = withID(*dst)
	if err := kpi.Validate(*dst); err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
		return false
	}
	return true
}

func (h *Handler) handleSaveDepartment(w http.ResponseWriter, r *http.Request) {
	var d kpi.Department
	if !decodeEntity(w, r, &d) {
		return
	}
	api.Success(w, h.Store.SaveDepartment(r.Context(), d), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var e kpi.Employee
	if !api.Decode(w, r, &e, reqID) {
		return
	}
	e = withID(h.Store.MergeEmployee(e))
	if err := kpi.Validate(e); err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
		return
	}
	if h.Photos != nil && e.PhotoURL != "" {
		url, err := h.Photos.Normalize(r.Context(), e.ID, e.PhotoURL)
		if err != nil {
			if errors.Is(err, photo.ErrInvalidDataURI) || errors.Is(err, photo.ErrNotAnImage) {
				api.Fail(w, http.StatusBadRequest, "invalid_photo", err.Error(), reqID)
				return
			}
			slog.Warn("photo normalize failed", "employeeId", e.ID, "err", err)
			api.Fail(w, http.StatusBadGateway, "photo_store_failed", "failed to store photo", reqID)
			return
		}
		e.PhotoURL = url
	}
	saved := h.Store.SaveEmployee(r.Context(), e)
	api.Success(w, saved.Public(), reqID)
}

func (h *Handler) handleSaveKPI(w http.ResponseWriter, r *http.Request) {
	var k kpi.KPI
	if !decodeEntity(w, r, &k) {
		return
	}
	api.Success(w, h.Store.SaveKPI(r.Context(), k), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveActivity(w http.ResponseWriter, r *http.Request) {
	var a kpi.Activity
	if !decodeEntity(w, r, &a) {
		return
	}
	api.Success(w, h.Store.SaveActivity(r.Context(), a), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveAssignment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var a kpi.Assignment
	if !api.Decode(w, r, &a, reqID) {
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", a.EmployeeID, "is required")
	v.Required("kpiId", a.KPIID, "is required")
	if a.AssignedDate != "" {
		v.Date("assignedDate", a.AssignedDate)
	}
	if v.Reject(w, reqID) {
		return
	}
	saved, err := h.Store.SaveAssignmentUnique(r.Context(), a)
	if errors.Is(err, state.ErrDuplicateAssignment) {
		api.Fail(w, http.StatusConflict, "duplicate_assignment", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
		return
	}
	api.Success(w, saved, reqID)
}

func (h *Handler) handleDelete(del func(ctx context.Context, id string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		del(r.Context(), id)
		api.Success(w, map[string]string{"id": id, "status": "deleted"}, middleware.GetRequestID(r.Context()))
	}
}
