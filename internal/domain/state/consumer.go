package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kpiteam/internal/domain/kpi"
)

// UpsertRecord fills in the derived fields of a KPI evaluation and saves it.
// An existing record for the same employee, KPI and period instance is
// replaced and keeps its original date. A record named by id must belong to
// the same employee.
func (s *Store) UpsertRecord(ctx context.Context, in kpi.Record) (kpi.Record, error) {
	if in.EmployeeID == "" || in.KPIID == "" || in.ActivityID == "" {
		return kpi.Record{}, fmt.Errorf("%w: employeeId, kpiId and activityId are required", kpi.ErrMissingField)
	}
	level, err := kpi.ParseLevel(string(in.Level))
	if err != nil {
		return kpi.Record{}, err
	}
	score, _ := kpi.KPIScore(level)

	s.mu.RLock()
	var existing *kpi.Record
	for _, r := range s.records.items {
		if in.ID != "" && r.ID == in.ID {
			r := r
			existing = &r
			break
		}
		if in.ID == "" && r.EmployeeID == in.EmployeeID && r.KPIID == in.KPIID &&
			r.Period == in.Period && r.PeriodDetail == in.PeriodDetail {
			r := r
			existing = &r
			break
		}
	}
	var weight float64
	for _, a := range s.assignments.items {
		if a.EmployeeID == in.EmployeeID && a.KPIID == in.KPIID {
			weight = a.Weight
			break
		}
	}
	activityName := in.ActivityName
	for _, a := range s.activities.items {
		if a.ID == in.ActivityID {
			activityName = a.Name
			break
		}
	}
	target, _ := s.kpis.get(in.KPIID)
	if target.ID == "" {
		target.ID = in.KPIID
	}
	rules := s.levelRules.list()
	s.mu.RUnlock()

	rec := in.Clone()
	rec.Level = level
	rec.Score = score
	rec.Weight = weight
	rec.WeightedScore = kpi.WeightedScore(score, weight)
	rec.ActivityName = activityName
	if strings.TrimSpace(rec.Note) == "" {
		rec.Note = kpi.ResolveRubric(rules, target, level)
	}
	if existing != nil {
		if existing.EmployeeID != in.EmployeeID {
			return kpi.Record{}, ErrRecordOwner
		}
		rec.ID = existing.ID
		rec.Date = existing.Date
		if rec.UserNote == "" {
			rec.UserNote = existing.UserNote
		}
		if rec.ManagerComment == "" {
			rec.ManagerComment = existing.ManagerComment
		}
		if rec.DetailProgress == "" {
			rec.DetailProgress = existing.DetailProgress
		}
		if rec.Progress == nil {
			rec.Progress = existing.Progress
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Date == "" {
		rec.Date = s.now().UTC().Format(time.RFC3339)
	}
	if err := kpi.Validate(rec); err != nil {
		return kpi.Record{}, err
	}
	return s.SaveRecord(ctx, rec), nil
}

// SaveCompetencyAssessment saves one competency record per chosen level for
// an employee and assessment period, reusing the ids of earlier records.
func (s *Store) SaveCompetencyAssessment(ctx context.Context, employeeID, period string, levels map[string]kpi.Level) ([]kpi.CompetencyRecord, error) {
	if employeeID == "" || period == "" {
		return nil, fmt.Errorf("%w: employeeId and period are required", kpi.ErrMissingField)
	}
	if len(levels) == 0 {
		return nil, ErrNothingToSave
	}
	parsed := make(map[string]kpi.Level, len(levels))
	for id, raw := range levels {
		level, err := kpi.ParseLevel(string(raw))
		if err != nil {
			return nil, err
		}
		parsed[id] = level
	}

	s.mu.RLock()
	competencies := s.competencies.list()
	existing := make(map[string]kpi.CompetencyRecord)
	for _, r := range s.competencyRecords.items {
		if r.EmployeeID == employeeID && r.Period == period {
			existing[r.CompetencyID] = r
		}
	}
	s.mu.RUnlock()

	date := s.now().UTC().Format(time.RFC3339)
	var out []kpi.CompetencyRecord
	for _, comp := range competencies {
		level, ok := parsed[comp.ID]
		if !ok {
			continue
		}
		score, _ := kpi.CompetencyScore(level)
		rec := kpi.CompetencyRecord{
			ID:            uuid.NewString(),
			Date:          date,
			EmployeeID:    employeeID,
			CompetencyID:  comp.ID,
			Period:        period,
			Level:         level,
			Score:         score,
			Weight:        comp.Weight,
			WeightedScore: kpi.WeightedScore(score, comp.Weight),
		}
		if prev, ok := existing[comp.ID]; ok {
			rec.ID = prev.ID
		}
		out = append(out, s.SaveCompetencyRecord(ctx, rec))
	}
	return out, nil
}

// SaveAssignmentUnique saves a, refusing a second assignment of the same KPI
// to the same employee.
func (s *Store) SaveAssignmentUnique(ctx context.Context, a kpi.Assignment) (kpi.Assignment, error) {
	if a.EmployeeID == "" || a.KPIID == "" {
		return kpi.Assignment{}, fmt.Errorf("%w: employeeId and kpiId are required", kpi.ErrMissingField)
	}
	s.mu.RLock()
	for _, existing := range s.assignments.items {
		if existing.EmployeeID == a.EmployeeID && existing.KPIID == a.KPIID && existing.ID != a.ID {
			s.mu.RUnlock()
			return kpi.Assignment{}, ErrDuplicateAssignment
		}
	}
	s.mu.RUnlock()
	if a.AssignedDate == "" {
		a.AssignedDate = s.now().Format("2006-01-02")
	}
	return s.SaveAssignment(ctx, a), nil
}

// MergeEmployee fills empty fields of an edited employee from the stored
// version. New employees get the default password and the employee role.
func (s *Store) MergeEmployee(in kpi.Employee) kpi.Employee {
	prev, _ := s.Employee(in.ID)
	out := in
	out.Code = firstNonEmpty(in.Code, prev.Code)
	out.Name = firstNonEmpty(in.Name, prev.Name)
	out.DepartmentID = firstNonEmpty(in.DepartmentID, prev.DepartmentID)
	out.Position = firstNonEmpty(in.Position, prev.Position)
	out.Email = firstNonEmpty(in.Email, prev.Email)
	out.Password = firstNonEmpty(in.Password, prev.Password, kpi.DefaultEmployeePassword)
	out.PhotoURL = firstNonEmpty(in.PhotoURL, prev.PhotoURL)
	role, _ := kpi.NormalizeRole(firstNonEmpty(string(in.Role), string(prev.Role), string(kpi.RoleEmployee)))
	out.Role = role
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
