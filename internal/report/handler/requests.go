package handler

import (
	"time"

	"skillaudit/internal/report/models"
	"skillaudit/internal/report/service"
	dErrors "skillaudit/pkg/domain-errors"
)

type createReportRequest struct {
	CenterCode          string `json:"center_code" validate:"required"`
	FinancialYear       string `json:"financial_year" validate:"required"`
	AuditDate           string `json:"audit_date" validate:"required"`
	PlacementApplicable bool   `json:"placement_applicable"`
}

const auditDateLayout = "2006-01-02"

func (r *createReportRequest) Validate() error {
	if _, err := time.Parse(auditDateLayout, r.AuditDate); err != nil {
		return dErrors.Newf(dErrors.CodeValidation, "audit_date %q must look like 2026-03-12", r.AuditDate)
	}
	return models.ValidateFinancialYear(r.FinancialYear)
}

func (r *createReportRequest) params() service.CreateParams {
	date, _ := time.Parse(auditDateLayout, r.AuditDate)
	return service.CreateParams{
		CenterCode:          r.CenterCode,
		FinancialYear:       r.FinancialYear,
		AuditDate:           date,
		PlacementApplicable: r.PlacementApplicable,
	}
}

type observationEntry struct {
	CheckpointID     string `json:"checkpoint_id" validate:"required"`
	TotalSamples     int    `json:"total_samples" validate:"gte=0"`
	SamplesCompliant int    `json:"samples_compliant" validate:"gte=0"`
	Remarks          string `json:"remarks"`
}

type updateObservationsRequest struct {
	Observations []observationEntry `json:"observations" validate:"required,min=1,dive"`
}

func (r *updateObservationsRequest) entries() []service.ObservationEntry {
	out := make([]service.ObservationEntry, len(r.Observations))
	for i, o := range r.Observations {
		out[i] = service.ObservationEntry{
			CheckpointID:     o.CheckpointID,
			TotalSamples:     o.TotalSamples,
			SamplesCompliant: o.SamplesCompliant,
			Remarks:          o.Remarks,
		}
	}
	return out
}

type submitRequest struct {
	AuditorRemarks string `json:"auditor_remarks"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type remarksRequest struct {
	Remarks map[string]string `json:"remarks" validate:"required,min=1"`
}

type areaStatusResponse struct {
	Area     string  `json:"area"`
	Obtained float64 `json:"obtained"`
	Ceiling  float64 `json:"ceiling"`
	Percent  float64 `json:"percent"`
	Status   string  `json:"status"`
	Color    string  `json:"color,omitempty"`
}

type observationResponse struct {
	CheckpointID     string  `json:"checkpoint_id"`
	TotalSamples     int     `json:"total_samples"`
	SamplesCompliant int     `json:"samples_compliant"`
	CompliantPercent float64 `json:"compliant_percent"`
	Score            float64 `json:"score"`
	MaxScore         float64 `json:"max_score"`
	Remarks          string  `json:"remarks,omitempty"`
	CenterHeadRemark string  `json:"center_head_remark,omitempty"`
}

type reportResponse struct {
	ID                  string  `json:"id"`
	CenterCode          string  `json:"center_code"`
	CenterName          string  `json:"center_name"`
	CenterType          string  `json:"center_type"`
	FinancialYear       string  `json:"financial_year"`
	AuditDate           string  `json:"audit_date"`
	PlacementApplicable bool    `json:"placement_applicable"`
	GrandTotal          float64 `json:"grand_total"`
	OverallStatus       string  `json:"overall_status,omitempty"`
	Status              string  `json:"status"`
	RejectReason        string  `json:"reject_reason,omitempty"`
	RemarkEdit          string  `json:"remark_edit_state,omitempty"`
	AuditorRemarks      string  `json:"auditor_remarks,omitempty"`

	AreaStatuses []areaStatusResponse  `json:"area_statuses"`
	Observations []observationResponse `json:"observations"`
}

func toResponse(r *models.AuditReport) reportResponse {
	resp := reportResponse{
		ID:                  r.ID.String(),
		CenterCode:          r.CenterCode,
		CenterName:          r.CenterName,
		CenterType:          string(r.CenterType),
		FinancialYear:       r.FinancialYear,
		AuditDate:           r.AuditDate.Format(auditDateLayout),
		PlacementApplicable: r.PlacementApplicable,
		GrandTotal:          r.GrandTotal,
		OverallStatus:       string(r.OverallStatus),
		Status:              string(r.Status),
		RejectReason:        r.RejectReason,
		RemarkEdit:          string(r.RemarkEdit),
		AuditorRemarks:      r.AuditorRemarks,
	}
	for _, st := range r.AreaStatuses {
		if st.Area == "" {
			continue
		}
		area := areaStatusResponse{
			Area:    string(st.Area),
			Ceiling: st.Ceiling,
			Status:  st.DisplayStatus(),
		}
		if st.Applicable {
			area.Obtained = st.Total
			area.Percent = st.Percent
			area.Color = st.Status.Color()
		}
		resp.AreaStatuses = append(resp.AreaStatuses, area)
	}
	for _, o := range r.Observations {
		resp.Observations = append(resp.Observations, observationResponse{
			CheckpointID:     o.CheckpointID,
			TotalSamples:     o.TotalSamples,
			SamplesCompliant: o.SamplesCompliant,
			CompliantPercent: o.CompliantPercent,
			Score:            o.Score,
			MaxScore:         o.MaxScore,
			Remarks:          o.Remarks,
			CenterHeadRemark: o.CenterHeadRemark,
		})
	}
	return resp
}
