package auth

import "kpiteam/internal/domain/kpi"

// VisibleRecords returns the records viewer may see: all of them for
// managers, only their own for employees.
func VisibleRecords(viewer kpi.Employee, records []kpi.Record) []kpi.Record {
	if viewer.Role == kpi.RoleManager {
		return records
	}
	out := make([]kpi.Record, 0)
	for _, r := range records {
		if r.EmployeeID == viewer.ID {
			out = append(out, r)
		}
	}
	return out
}

func VisibleAssignments(viewer kpi.Employee, assignments []kpi.Assignment) []kpi.Assignment {
	if viewer.Role == kpi.RoleManager {
		return assignments
	}
	out := make([]kpi.Assignment, 0)
	for _, a := range assignments {
		if a.EmployeeID == viewer.ID {
			out = append(out, a)
		}
	}
	return out
}

func VisibleCompetencyRecords(viewer kpi.Employee, records []kpi.CompetencyRecord) []kpi.CompetencyRecord {
	if viewer.Role == kpi.RoleManager {
		return records
	}
	out := make([]kpi.CompetencyRecord, 0)
	for _, r := range records {
		if r.EmployeeID == viewer.ID {
			out = append(out, r)
		}
	}
	return out
}

// VisibleEmployees strips passwords and limits employees to themselves.
func VisibleEmployees(viewer kpi.Employee, employees []kpi.Employee) []kpi.Employee {
	out := make([]kpi.Employee, 0, len(employees))
	for _, e := range employees {
		if viewer.Role != kpi.RoleManager && e.ID != viewer.ID {
			continue
		}
		out = append(out, e.Public())
	}
	return out
}

// CanWriteFor reports whether viewer may create or change data owned by
// employeeID.
func CanWriteFor(viewer kpi.Employee, employeeID string) bool {
	return viewer.Role == kpi.RoleManager || viewer.ID == employeeID
}

// ScopeDataset applies every visibility rule to a snapshot.
func ScopeDataset(viewer kpi.Employee, ds kpi.Dataset) kpi.Dataset {
	ds.Employees = VisibleEmployees(viewer, ds.Employees)
	ds.Records = VisibleRecords(viewer, ds.Records)
	ds.Assignments = VisibleAssignments(viewer, ds.Assignments)
	ds.CompetencyRecords = VisibleCompetencyRecords(viewer, ds.CompetencyRecords)
	return ds
}
