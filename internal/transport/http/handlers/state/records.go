package statehandler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"kpiteam/internal/domain/auth"
	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/domain/state"
	"kpiteam/internal/transport/http/api"
	"kpiteam/internal/transport/http/middleware"
	"kpiteam/internal/transport/http/shared"
)

func forbidden(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusForbidden, "forbidden", "cannot change another employee's data", middleware.GetRequestID(r.Context()))
}

// recordOwner returns the employee of the stored record with this id.
func (h *Handler) recordOwner(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	for _, rec := range h.Store.Records() {
		if rec.ID == id {
			return rec.EmployeeID, true
		}
	}
	return "", false
}

func (h *Handler) competencyRecordOwner(id string) (string, bool) {
	if id == "" {
		return "", false
	}
	for _, rec := range h.Store.CompetencyRecords() {
		if rec.ID == id {
			return rec.EmployeeID, true
		}
	}
	return "", false
}

func canReplace(viewer kpi.Employee, owner string, stored bool) bool {
	return !stored || auth.CanWriteFor(viewer, owner)
}

func (h *Handler) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var rec kpi.Record
	if !decodeEntity(w, r, &rec) {
		return
	}
	owner, stored := h.recordOwner(rec.ID)
	if !auth.CanWriteFor(user.Employee, rec.EmployeeID) || !canReplace(user.Employee, owner, stored) {
		forbidden(w, r)
		return
	}
	api.Success(w, h.Store.SaveRecord(r.Context(), rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertRecord(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var rec kpi.Record
	if !api.Decode(w, r, &rec, reqID) {
		return
	}
	if rec.EmployeeID == "" && user.Employee.Role != kpi.RoleManager {
		rec.EmployeeID = user.Employee.ID
	}
	owner, stored := h.recordOwner(rec.ID)
	if !auth.CanWriteFor(user.Employee, rec.EmployeeID) || !canReplace(user.Employee, owner, stored) {
		forbidden(w, r)
		return
	}
	saved, err := h.Store.UpsertRecord(r.Context(), rec)
	if errors.Is(err, state.ErrRecordOwner) {
		forbidden(w, r)
		return
	}
	if errors.Is(err, kpi.ErrMissingField) || errors.Is(err, kpi.ErrUnknownLevel) {
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_record", err.Error(), reqID)
		return
	}
	api.Success(w, saved, reqID)
}

func (h *Handler) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	if owner, stored := h.recordOwner(id); !canReplace(user.Employee, owner, stored) {
		forbidden(w, r)
		return
	}
	h.Store.DeleteRecord(r.Context(), id)
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSaveCompetencyRecord(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var rec kpi.CompetencyRecord
	if !decodeEntity(w, r, &rec) {
		return
	}
	owner, stored := h.competencyRecordOwner(rec.ID)
	if !auth.CanWriteFor(user.Employee, rec.EmployeeID) || !canReplace(user.Employee, owner, stored) {
		forbidden(w, r)
		return
	}
	api.Success(w, h.Store.SaveCompetencyRecord(r.Context(), rec), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCompetencyRecord(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	id := chi.URLParam(r, "id")
	if owner, stored := h.competencyRecordOwner(id); !canReplace(user.Employee, owner, stored) {
		forbidden(w, r)
		return
	}
	h.Store.DeleteCompetencyRecord(r.Context(), id)
	api.Success(w, map[string]string{"id": id, "status": "deleted"}, middleware.GetRequestID(r.Context()))
}

type assessmentRequest struct {
	EmployeeID string            `json:"employeeId"`
	Period     string            `json:"period"`
	Levels     map[string]string `json:"levels"`
}

func (h *Handler) handleCompetencyAssessment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	var payload assessmentRequest
	if !api.Decode(w, r, &payload, reqID) {
		return
	}
	if payload.Period == "" {
		payload.Period = kpi.DefaultAssessmentPeriod(h.now())
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	if !strings.HasPrefix(payload.Period, "Annual-") {
		v.Add("period", "must be an annual period such as Annual-2026")
	}
	levels := make(map[string]kpi.Level, len(payload.Levels))
	for competencyID, raw := range payload.Levels {
		v.Level("levels."+competencyID, raw)
		if level, err := kpi.ParseLevel(raw); err == nil {
			levels[competencyID] = level
		}
	}
	if v.Reject(w, reqID) {
		return
	}
	if !auth.CanWriteFor(user.Employee, payload.EmployeeID) {
		forbidden(w, r)
		return
	}

	saved, err := h.Store.SaveCompetencyAssessment(r.Context(), payload.EmployeeID, payload.Period, levels)
	if errors.Is(err, state.ErrNothingToSave) {
		api.Fail(w, http.StatusBadRequest, "nothing_to_save", err.Error(), reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_assessment", err.Error(), reqID)
		return
	}

	competencies := h.Store.Competencies()
	total, weight := kpi.CompetencyTotals(competencies, levels)
	api.Success(w, map[string]any{
		"records":     saved,
		"totalScore":  total,
		"totalWeight": weight,
	}, reqID)
}
