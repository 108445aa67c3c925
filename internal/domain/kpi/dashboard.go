package kpi

import (
	"math"
	"sort"
)

// AllFilter selects every department or employee in a Filter.
const AllFilter = "all"

// Viewer is the identity a dashboard is built for.
type Viewer struct {
	EmployeeID string
	Role       Role
}

// Filter narrows a manager's dashboard. Empty values behave like AllFilter.
// Employees always see only themselves regardless of the filter.
type Filter struct {
	DepartmentID string
	EmployeeID   string
}

type KPIPerformance struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	AvgScore   float64 `json:"avgScore"`
	Percentage float64 `json:"percentage"`
	Count      int     `json:"count"`
}

type Dashboard struct {
	Title           string           `json:"title"`
	EmployeeCount   int              `json:"employeeCount"`
	AssignmentCount int              `json:"assignmentCount"`
	RecordCount     int              `json:"recordCount"`
	AvgScore        float64          `json:"avgScore"`
	CompletionRate  int              `json:"completionRate"`
	CurrentLevel    Level            `json:"currentLevel"`
	Status          string           `json:"status"`
	KPIs            []KPIPerformance `json:"kpis"`
	Individual      bool             `json:"individual"`
	Employee        *Employee        `json:"employee,omitempty"`
	Department      *Department      `json:"department,omitempty"`
	Records         []Record         `json:"records"`
}

func isAll(v string) bool {
	return v == "" || v == AllFilter
}

// VisibleEmployees applies the viewer's role and the filter to the employee list.
func VisibleEmployees(employees []Employee, viewer Viewer, filter Filter) []Employee {
	out := make([]Employee, 0, len(employees))
	for _, e := range employees {
		if viewer.Role != RoleManager {
			if e.ID == viewer.EmployeeID {
				out = append(out, e)
			}
			continue
		}
		if !isAll(filter.DepartmentID) && e.DepartmentID != filter.DepartmentID {
			continue
		}
		if !isAll(filter.EmployeeID) && e.ID != filter.EmployeeID {
			continue
		}
		out = append(out, e)
	}
	return out
}

func employeeIDSet(employees []Employee) map[string]struct{} {
	ids := make(map[string]struct{}, len(employees))
	for _, e := range employees {
		ids[e.ID] = struct{}{}
	}
	return ids
}

// BuildDashboard aggregates the records and assignments visible to viewer.
func BuildDashboard(ds Dataset, viewer Viewer, filter Filter) Dashboard {
	employees := VisibleEmployees(ds.Employees, viewer, filter)
	ids := employeeIDSet(employees)

	var records []Record
	for _, r := range ds.Records {
		if _, ok := ids[r.EmployeeID]; ok {
			records = append(records, r)
		}
	}
	var assignments []Assignment
	for _, a := range ds.Assignments {
		if _, ok := ids[a.EmployeeID]; ok {
			assignments = append(assignments, a)
		}
	}

	d := Dashboard{
		Title:           "My Performance Dashboard",
		EmployeeCount:   len(employees),
		AssignmentCount: len(assignments),
		RecordCount:     len(records),
		Records:         records,
		KPIs:            []KPIPerformance{},
	}
	if viewer.Role == RoleManager {
		d.Title = "Manager Dashboard"
	}
	if d.Records == nil {
		d.Records = []Record{}
	}

	var avg float64
	if len(records) > 0 {
		var sum float64
		for _, r := range records {
			sum += r.Score
		}
		avg = sum / float64(len(records))
	}
	d.AvgScore = round2(avg)
	if len(assignments) > 0 {
		d.CompletionRate = int(math.Round(float64(len(records)) / float64(len(assignments)) * 100))
	}
	d.CurrentLevel = LevelForAverage(avg)
	d.Status = StatusForAverage(avg)
	d.KPIs = kpiPerformance(ds.KPIs, records, assignments)

	d.Individual = viewer.Role != RoleManager || !isAll(filter.EmployeeID)
	if d.Individual && len(employees) > 0 {
		emp := employees[0].Public()
		d.Employee = &emp
		for _, dept := range ds.Departments {
			if dept.ID == emp.DepartmentID {
				dept := dept
				d.Department = &dept
				break
			}
		}
	}
	return d
}

func kpiPerformance(kpis []KPI, records []Record, assignments []Assignment) []KPIPerformance {
	byID := make(map[string]KPI, len(kpis))
	for _, k := range kpis {
		byID[k.ID] = k
	}
	seen := make(map[string]struct{})
	out := []KPIPerformance{}
	for _, a := range assignments {
		if _, ok := seen[a.KPIID]; ok {
			continue
		}
		seen[a.KPIID] = struct{}{}

		perf := KPIPerformance{ID: a.KPIID, Name: "Unknown"}
		if k, ok := byID[a.KPIID]; ok {
			perf.Name = k.Name
			perf.Code = k.Code
		}
		var sum float64
		for _, r := range records {
			if r.KPIID == a.KPIID {
				sum += r.Score
				perf.Count++
			}
		}
		if perf.Count > 0 {
			avg := sum / float64(perf.Count)
			perf.AvgScore = round2(avg)
			perf.Percentage = round2(avg / 5 * 100)
		}
		out = append(out, perf)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AvgScore > out[j].AvgScore
	})
	return out
}

// CompetencyTotals sums weighted competency scores for the chosen levels
// (keyed by competency id) and the total weight of every competency.
func CompetencyTotals(competencies []Competency, levels map[string]Level) (totalScore, totalWeight float64) {
	for _, c := range competencies {
		if level, ok := levels[c.ID]; ok {
			if score, ok := CompetencyScore(level); ok {
				totalScore += score * c.Weight / 100
			}
		}
		totalWeight += c.Weight
	}
	return round2(totalScore), totalWeight
}
