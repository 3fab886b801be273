package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

var statusFill = map[string][3]int{
	"green":  {198, 239, 206},
	"yellow": {255, 235, 156},
	"red":    {255, 199, 206},
}

// PDF renders the report view as the attachment document: a header, the
// summary table, and one detail table per applicable area.
func PDF(v *View) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 9, "Audit Report", "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 6, fmt.Sprintf("%s (%s) | %s | FY %s | %s",
		v.CenterName, v.CenterCode, v.CenterType, v.FinancialYear, v.AuditDate),
		"", 1, "C", false, 0, "")
	doc.Ln(4)

	summaryTable(doc, v)
	for _, d := range v.Details {
		if !d.Applicable {
			continue
		}
		detailTable(doc, d)
	}

	if v.AuditorRemarks != "" {
		doc.Ln(3)
		doc.SetFont("Helvetica", "B", 10)
		doc.CellFormat(0, 6, "Auditor remarks", "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(0, 5, v.AuditorRemarks, "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func summaryTable(doc *fpdf.Fpdf, v *View) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(80, 7, "Area", "1", 0, "L", true, 0, "")
	doc.CellFormat(50, 7, "Score", "1", 0, "C", true, 0, "")
	doc.CellFormat(50, 7, "Status", "1", 1, "C", true, 0, "")

	doc.SetFont("Helvetica", "", 10)
	for _, row := range v.Summary {
		score := "NA"
		if row.Applicable {
			score = fmt.Sprintf("%.2f / %.2f", row.Obtained, row.Ceiling)
		}
		doc.CellFormat(80, 7, row.Name, "1", 0, "L", false, 0, "")
		doc.CellFormat(50, 7, score, "1", 0, "C", false, 0, "")
		fillStatus(doc, row.Color)
		doc.CellFormat(50, 7, row.Status, "1", 1, "C", row.Applicable, 0, "")
	}

	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(80, 7, "Grand Total", "1", 0, "L", false, 0, "")
	doc.CellFormat(50, 7, fmt.Sprintf("%.2f / 100.00", v.GrandTotal), "1", 0, "C", false, 0, "")
	fillStatus(doc, v.OverallColor)
	doc.CellFormat(50, 7, v.Overall, "1", 1, "C", true, 0, "")
	doc.Ln(4)
}

func detailTable(doc *fpdf.Fpdf, d AreaDetail) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, d.Name, "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "B", 8)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(12, 6, "#", "1", 0, "C", true, 0, "")
	doc.CellFormat(78, 6, "Checkpoint", "1", 0, "L", true, 0, "")
	doc.CellFormat(18, 6, "Samples", "1", 0, "C", true, 0, "")
	doc.CellFormat(20, 6, "Compliant", "1", 0, "C", true, 0, "")
	doc.CellFormat(16, 6, "%", "1", 0, "C", true, 0, "")
	doc.CellFormat(18, 6, "Score", "1", 0, "C", true, 0, "")
	doc.CellFormat(18, 6, "Max", "1", 1, "C", true, 0, "")

	doc.SetFont("Helvetica", "", 8)
	for _, row := range d.Checkpoints {
		doc.CellFormat(12, 6, row.ID, "1", 0, "C", false, 0, "")
		doc.CellFormat(78, 6, row.Name, "1", 0, "L", false, 0, "")
		doc.CellFormat(18, 6, fmt.Sprintf("%d", row.TotalSamples), "1", 0, "C", false, 0, "")
		doc.CellFormat(20, 6, fmt.Sprintf("%d", row.SamplesCompliant), "1", 0, "C", false, 0, "")
		doc.CellFormat(16, 6, fmt.Sprintf("%.2f", row.Percent), "1", 0, "C", false, 0, "")
		doc.CellFormat(18, 6, fmt.Sprintf("%.2f", row.Score), "1", 0, "C", false, 0, "")
		doc.CellFormat(18, 6, fmt.Sprintf("%.2f", row.MaxScore), "1", 1, "C", false, 0, "")
	}
	doc.Ln(3)
}

func fillStatus(doc *fpdf.Fpdf, color string) {
	if rgb, ok := statusFill[color]; ok {
		doc.SetFillColor(rgb[0], rgb[1], rgb[2])
		return
	}
	doc.SetFillColor(255, 255, 255)
}
