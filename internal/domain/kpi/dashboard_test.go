package kpi

import (
	"bytes"
	"testing"
	"time"
)

func TestBuildDashboardForEmployee(t *testing.T) {
	d := BuildDashboard(Seed(), Viewer{EmployeeID: "e2", Role: RoleEmployee}, Filter{DepartmentID: "d1"})
	if d.EmployeeCount != 1 || d.AssignmentCount != 1 || d.RecordCount != 1 {
		t.Fatalf("unexpected counts: %+v", d)
	}
	if d.AvgScore != 3 || d.CurrentLevel != LevelGP || d.Status != "On Track" {
		t.Fatalf("unexpected stats: avg %.2f level %s status %s", d.AvgScore, d.CurrentLevel, d.Status)
	}
	if d.CompletionRate != 100 {
		t.Fatalf("expected 100%% completion, got %d", d.CompletionRate)
	}
	if !d.Individual || d.Employee == nil || d.Employee.ID != "e2" {
		t.Fatalf("expected individual view of e2, got %+v", d.Employee)
	}
	if d.Employee.Password != "" {
		t.Fatalf("expected password stripped")
	}
	if d.Department == nil || d.Department.ID != "d2" {
		t.Fatalf("expected department d2, got %+v", d.Department)
	}
}

func TestBuildDashboardForManagerAll(t *testing.T) {
	d := BuildDashboard(Seed(), Viewer{EmployeeID: "e1", Role: RoleManager}, Filter{})
	if d.Title != "Manager Dashboard" {
		t.Fatalf("unexpected title %q", d.Title)
	}
	if d.EmployeeCount != 2 || d.AssignmentCount != 3 || d.RecordCount != 2 {
		t.Fatalf("unexpected counts: %+v", d)
	}
	if d.AvgScore != 3.5 || d.CurrentLevel != LevelCP {
		t.Fatalf("unexpected average %.2f / %s", d.AvgScore, d.CurrentLevel)
	}
	if d.CompletionRate != 67 {
		t.Fatalf("expected 67%% completion, got %d", d.CompletionRate)
	}
	if d.Individual || d.Employee != nil {
		t.Fatalf("expected team view")
	}
	if len(d.KPIs) != 3 {
		t.Fatalf("expected 3 kpis, got %d", len(d.KPIs))
	}
	if d.KPIs[0].ID != "k1" || d.KPIs[0].AvgScore != 4 || d.KPIs[0].Percentage != 80 {
		t.Fatalf("expected k1 first, got %+v", d.KPIs[0])
	}
	if d.KPIs[2].ID != "k3" || d.KPIs[2].Count != 0 {
		t.Fatalf("expected k3 last with no records, got %+v", d.KPIs[2])
	}
}

func TestBuildDashboardDepartmentFilter(t *testing.T) {
	d := BuildDashboard(Seed(), Viewer{EmployeeID: "e1", Role: RoleManager}, Filter{DepartmentID: "d1", EmployeeID: AllFilter})
	if d.EmployeeCount != 1 || d.AssignmentCount != 2 {
		t.Fatalf("unexpected counts: %+v", d)
	}
	if d.CompletionRate != 50 {
		t.Fatalf("expected 50%% completion, got %d", d.CompletionRate)
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(Dataset{}, Viewer{EmployeeID: "x", Role: RoleEmployee}, Filter{})
	if d.AvgScore != 0 || d.CompletionRate != 0 || d.CurrentLevel != LevelF || d.Status != "Needs Support" {
		t.Fatalf("unexpected empty dashboard %+v", d)
	}
	if d.Employee != nil || len(d.KPIs) != 0 || d.Records == nil {
		t.Fatalf("unexpected empty dashboard %+v", d)
	}
}

func TestCompetencyTotals(t *testing.T) {
	comps := Seed().Competencies
	total, weight := CompetencyTotals(comps, map[string]Level{"c1": LevelEP, "c2": LevelGP})
	if total != 46 {
		t.Fatalf("expected 46, got %.2f", total)
	}
	if weight != 100 {
		t.Fatalf("expected weight 100, got %.2f", weight)
	}
}

func TestRenderDashboardPDF(t *testing.T) {
	d := BuildDashboard(Seed(), Viewer{EmployeeID: "e1", Role: RoleManager}, Filter{EmployeeID: "e1"})
	var buf bytes.Buffer
	if err := RenderDashboardPDF(&buf, d, time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected PDF output")
	}
}
