// Package render turns an audit report into its user-facing forms: the
// HTML body mailed to the center and the PDF attached to it. Both forms
// draw from one flattened view so they can never disagree.
package render

import (
	"fmt"

	"skillaudit/internal/report/models"
)

// AreaRow is one line of the score summary table.
type AreaRow struct {
	Name     string
	Obtained float64
	Ceiling  float64
	Percent  float64
	Status   string
	Color    string

	Applicable bool
}

// CheckpointRow is one line of an area's detail table.
type CheckpointRow struct {
	ID               string
	Name             string
	TotalSamples     int
	SamplesCompliant int
	Percent          float64
	Score            float64
	MaxScore         float64
	Remarks          string
	CenterHeadRemark string
}

// AreaDetail is one area's detail table.
type AreaDetail struct {
	Name        string
	Applicable  bool
	Checkpoints []CheckpointRow
}

// View is the flattened, render-ready form of a report.
type View struct {
	CenterName    string
	CenterCode    string
	CenterType    string
	FinancialYear string
	AuditDate     string

	GrandTotal   float64
	Overall      string
	OverallColor string

	WorkflowStatus string
	RejectReason   string
	AuditorRemarks string

	Summary []AreaRow
	Details []AreaDetail
}

// Build flattens a report against its catalog variant. Inapplicable areas
// keep their row (shown as NA) but carry no checkpoints.
func Build(r *models.AuditReport) (*View, error) {
	cat, err := r.Catalog()
	if err != nil {
		return nil, err
	}

	v := &View{
		CenterName:     r.CenterName,
		CenterCode:     r.CenterCode,
		CenterType:     string(r.CenterType),
		FinancialYear:  r.FinancialYear,
		AuditDate:      r.AuditDate.Format("02 Jan 2006"),
		GrandTotal:     r.GrandTotal,
		Overall:        string(r.OverallStatus),
		OverallColor:   r.OverallStatus.Color(),
		WorkflowStatus: string(r.Status),
		RejectReason:   r.RejectReason,
		AuditorRemarks: r.AuditorRemarks,
	}

	for _, st := range r.AreaStatuses {
		row := AreaRow{
			Name:       string(st.Area),
			Ceiling:    st.Ceiling,
			Applicable: st.Applicable,
			Status:     st.DisplayStatus(),
		}
		if st.Applicable {
			row.Obtained = st.Total
			row.Percent = st.Percent
			row.Color = st.Status.Color()
		}
		v.Summary = append(v.Summary, row)
	}

	obsByID := make(map[string]models.Observation, len(r.Observations))
	for _, o := range r.Observations {
		obsByID[o.CheckpointID] = o
	}
	for _, area := range cat.Areas {
		detail := AreaDetail{Name: string(area.Name), Applicable: area.Applicable}
		if area.Applicable {
			for _, cp := range area.Checkpoints {
				o := obsByID[cp.ID]
				detail.Checkpoints = append(detail.Checkpoints, CheckpointRow{
					ID:               cp.ID,
					Name:             cp.Name,
					TotalSamples:     o.TotalSamples,
					SamplesCompliant: o.SamplesCompliant,
					Percent:          o.CompliantPercent,
					Score:            o.Score,
					MaxScore:         cp.MaxScore,
					Remarks:          o.Remarks,
					CenterHeadRemark: o.CenterHeadRemark,
				})
			}
		}
		v.Details = append(v.Details, detail)
	}
	return v, nil
}

// Subject is the fixed notification subject line for a report.
func (v *View) Subject() string {
	return fmt.Sprintf("Audit Report - %s - Score: %.2f/100 - %s", v.CenterName, v.GrandTotal, v.Overall)
}

// Filename names the PDF attachment and spreadsheet export for a report.
func (v *View) Filename(ext string) string {
	return fmt.Sprintf("audit-%s-%s.%s", v.CenterCode, v.FinancialYear, ext)
}
