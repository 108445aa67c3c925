package kpi

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderDashboardPDF writes a one-page summary of d to w.
func RenderDashboardPDF(w io.Writer, d Dashboard, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, d.Title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04")))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 12)
	if d.Employee != nil {
		pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", d.Employee.Name, d.Employee.Code))
		pdf.Ln(7)
		pdf.Cell(0, 8, fmt.Sprintf("Position: %s", d.Employee.Position))
		pdf.Ln(7)
		if d.Department != nil {
			pdf.Cell(0, 8, fmt.Sprintf("Department: %s", d.Department.Name))
			pdf.Ln(7)
		}
		pdf.Ln(3)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Employees: %d", d.EmployeeCount))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Assigned KPIs: %d", d.AssignmentCount))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Average score: %.2f", d.AvgScore))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Current level: %s (%s)", d.CurrentLevel, d.Status))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Completion: %d%%", d.CompletionRate))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(30, 8, "Code", "1", 0, "", false, 0, "")
	pdf.CellFormat(90, 8, "KPI", "1", 0, "", false, 0, "")
	pdf.CellFormat(25, 8, "Average", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Records", "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, k := range d.KPIs {
		pdf.CellFormat(30, 7, k.Code, "1", 0, "", false, 0, "")
		pdf.CellFormat(90, 7, k.Name, "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%.2f", k.AvgScore), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprintf("%d", k.Count), "1", 1, "R", false, 0, "")
	}

	return pdf.Output(w)
}
