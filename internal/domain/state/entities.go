package state

import (
	"context"

	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/platform/bridge"
)

var (
	departmentBinding = binding[kpi.Department]{
		name:       "departments",
		collection: func(s *Store) *collection[kpi.Department] { return &s.departments },
		saveAction: bridge.ActionSaveDepartment,
		delAction:  bridge.ActionDeleteDepartment,
	}
	employeeBinding = binding[kpi.Employee]{
		name:       "employees",
		collection: func(s *Store) *collection[kpi.Employee] { return &s.employees },
		saveAction: bridge.ActionSaveEmployee,
		delAction:  bridge.ActionDeleteEmployee,
	}
	kpiBinding = binding[kpi.KPI]{
		name:       "kpis",
		collection: func(s *Store) *collection[kpi.KPI] { return &s.kpis },
		saveAction: bridge.ActionSaveKPI,
		delAction:  bridge.ActionDeleteKPI,
	}
	activityBinding = binding[kpi.Activity]{
		name:       "activities",
		collection: func(s *Store) *collection[kpi.Activity] { return &s.activities },
		saveAction: bridge.ActionSaveActivity,
		delAction:  bridge.ActionDeleteActivity,
	}
	assignmentBinding = binding[kpi.Assignment]{
		name:       "assignments",
		collection: func(s *Store) *collection[kpi.Assignment] { return &s.assignments },
		saveAction: bridge.ActionSaveAssignment,
		delAction:  bridge.ActionDeleteAssignment,
	}
	recordBinding = binding[kpi.Record]{
		name:       "records",
		collection: func(s *Store) *collection[kpi.Record] { return &s.records },
		saveAction: bridge.ActionSaveRecord,
		delAction:  bridge.ActionDeleteRecord,
	}
	competencyRecordBinding = binding[kpi.CompetencyRecord]{
		name:       "competencyRecords",
		collection: func(s *Store) *collection[kpi.CompetencyRecord] { return &s.competencyRecords },
		saveAction: bridge.ActionSaveCompetencyRecord,
		delAction:  bridge.ActionDeleteCompetencyRecord,
	}
)

func (s *Store) SaveDepartment(ctx context.Context, d kpi.Department) kpi.Department {
	return saveEntity(ctx, s, departmentBinding, d)
}

func (s *Store) DeleteDepartment(ctx context.Context, id string) {
	deleteEntity(ctx, s, departmentBinding, id)
}

func (s *Store) SaveEmployee(ctx context.Context, e kpi.Employee) kpi.Employee {
	return saveEntity(ctx, s, employeeBinding, e)
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) {
	deleteEntity(ctx, s, employeeBinding, id)
}

func (s *Store) SaveKPI(ctx context.Context, k kpi.KPI) kpi.KPI {
	return saveEntity(ctx, s, kpiBinding, k)
}

func (s *Store) DeleteKPI(ctx context.Context, id string) {
	deleteEntity(ctx, s, kpiBinding, id)
}

func (s *Store) SaveActivity(ctx context.Context, a kpi.Activity) kpi.Activity {
	return saveEntity(ctx, s, activityBinding, a)
}

func (s *Store) DeleteActivity(ctx context.Context, id string) {
	deleteEntity(ctx, s, activityBinding, id)
}

func (s *Store) SaveAssignment(ctx context.Context, a kpi.Assignment) kpi.Assignment {
	return saveEntity(ctx, s, assignmentBinding, a)
}

func (s *Store) DeleteAssignment(ctx context.Context, id string) {
	deleteEntity(ctx, s, assignmentBinding, id)
}

func (s *Store) SaveRecord(ctx context.Context, r kpi.Record) kpi.Record {
	return saveEntity(ctx, s, recordBinding, r)
}

func (s *Store) DeleteRecord(ctx context.Context, id string) {
	deleteEntity(ctx, s, recordBinding, id)
}

func (s *Store) SaveCompetencyRecord(ctx context.Context, r kpi.CompetencyRecord) kpi.CompetencyRecord {
	return saveEntity(ctx, s, competencyRecordBinding, r)
}

func (s *Store) DeleteCompetencyRecord(ctx context.Context, id string) {
	deleteEntity(ctx, s, competencyRecordBinding, id)
}
