package xlsx

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"skillaudit/internal/render"
)

// ExportReport writes one report as a workbook: a Summary sheet with the
// area table and a Checkpoints sheet with every observation.
func ExportReport(v *render.View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summary := f.GetSheetName(0)
	if err := f.SetSheetName(summary, "Summary"); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}
	writeSummary(f, "Summary", v)

	if _, err := f.NewSheet("Checkpoints"); err != nil {
		return nil, fmt.Errorf("add checkpoints sheet: %w", err)
	}
	writeCheckpoints(f, "Checkpoints", v)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write report workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, sheet string, v *render.View) {
	setCell(f, sheet, 1, 1, "Center")
	setCell(f, sheet, 2, 1, fmt.Sprintf("%s (%s)", v.CenterName, v.CenterCode))
	setCell(f, sheet, 1, 2, "Financial Year")
	setCell(f, sheet, 2, 2, v.FinancialYear)
	setCell(f, sheet, 1, 3, "Audit Date")
	setCell(f, sheet, 2, 3, v.AuditDate)

	headerRow := 5
	for i, h := range []string{"Area", "Obtained", "Ceiling", "Percent", "Status"} {
		setCell(f, sheet, i+1, headerRow, h)
	}
	row := headerRow + 1
	for _, a := range v.Summary {
		setCell(f, sheet, 1, row, a.Name)
		if a.Applicable {
			setCell(f, sheet, 2, row, a.Obtained)
			setCell(f, sheet, 3, row, a.Ceiling)
			setCell(f, sheet, 4, row, a.Percent)
		} else {
			setCell(f, sheet, 2, row, "NA")
			setCell(f, sheet, 3, row, "NA")
			setCell(f, sheet, 4, row, "NA")
		}
		setCell(f, sheet, 5, row, a.Status)
		row++
	}
	setCell(f, sheet, 1, row, "Grand Total")
	setCell(f, sheet, 2, row, v.GrandTotal)
	setCell(f, sheet, 3, row, 100.0)
	setCell(f, sheet, 5, row, v.Overall)
}

func writeCheckpoints(f *excelize.File, sheet string, v *render.View) {
	headers := []string{"Area", "Checkpoint ID", "Checkpoint", "Total Samples", "Samples Compliant",
		"Compliant %", "Score", "Max Score", "Auditor Remarks", "Center Head Remarks"}
	for i, h := range headers {
		setCell(f, sheet, i+1, 1, h)
	}

	row := 2
	for _, d := range v.Details {
		if !d.Applicable {
			continue
		}
		for _, cp := range d.Checkpoints {
			setCell(f, sheet, 1, row, d.Name)
			setCell(f, sheet, 2, row, cp.ID)
			setCell(f, sheet, 3, row, cp.Name)
			setCell(f, sheet, 4, row, cp.TotalSamples)
			setCell(f, sheet, 5, row, cp.SamplesCompliant)
			setCell(f, sheet, 6, row, cp.Percent)
			setCell(f, sheet, 7, row, cp.Score)
			setCell(f, sheet, 8, row, cp.MaxScore)
			setCell(f, sheet, 9, row, cp.Remarks)
			setCell(f, sheet, 10, row, cp.CenterHeadRemark)
			row++
		}
	}
}
