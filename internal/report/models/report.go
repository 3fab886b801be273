// Package models defines the audit report aggregate and its workflow
// invariants. State checks (Can*) and mutations (Apply*) are split so
// stores can run them under their own locking (mutex or FOR UPDATE).
package models

import (
	"regexp"
	"time"

	"skillaudit/internal/catalog"
	"skillaudit/internal/compliance"
	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
)

// WorkflowStatus tracks the report through the supervisor workflow.
type WorkflowStatus string

const (
	StatusNotSubmitted WorkflowStatus = "not_submitted"
	StatusPending      WorkflowStatus = "pending_with_supervisor"
	StatusApproved     WorkflowStatus = "approved"
	StatusRejected     WorkflowStatus = "rejected"
)

// ParseWorkflowStatus validates a status from external input (query params,
// spreadsheet cells).
func ParseWorkflowStatus(s string) (WorkflowStatus, error) {
	switch WorkflowStatus(s) {
	case StatusNotSubmitted, StatusPending, StatusApproved, StatusRejected:
		return WorkflowStatus(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown workflow status %q", s)
}

// RemarkEditState tracks the center-head remarks sub-workflow that runs
// after approval. The field unlocks at most once per approval cycle.
type RemarkEditState string

const (
	RemarkLocked        RemarkEditState = "locked"
	RemarkEditRequested RemarkEditState = "edit_requested"
	RemarkUnlocked      RemarkEditState = "unlocked"
	RemarkConsumed      RemarkEditState = "consumed"
)

// Observation is one checkpoint's data for this audit: raw counts entered
// by the auditor plus the derived percent and score from the last
// recompute. CenterHeadRemark is appended through the post-approval
// sub-workflow, never by the auditor.
type Observation struct {
	CheckpointID     string
	TotalSamples     int
	SamplesCompliant int
	Remarks          string

	CompliantPercent float64
	Score            float64
	MaxScore         float64

	CenterHeadRemark string
}

var financialYearRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidateFinancialYear accepts the "2024-25" form used on every report key.
func ValidateFinancialYear(fy string) error {
	if !financialYearRe.MatchString(fy) {
		return dErrors.Newf(dErrors.CodeValidation, "financial year %q must look like 2024-25", fy)
	}
	return nil
}

// AuditReport is one audit of one center in one financial year. Exactly one
// non-finalized report may exist per (center code, financial year); the
// store enforces that with a uniqueness constraint.
type AuditReport struct {
	ID id.ReportID

	CenterID      id.CenterID
	CenterCode    string
	CenterName    string
	CenterType    catalog.CenterType
	FinancialYear string
	AuditDate     time.Time

	PlacementApplicable bool
	Observations        []Observation
	AreaTotals          map[catalog.AreaName]float64
	GrandTotal          float64

	AreaStatuses  [4]compliance.AreaStatus
	OverallStatus compliance.Status

	Status       WorkflowStatus
	RejectReason string
	RemarkEdit   RemarkEditState

	AuditorID      id.UserID
	AuditorRemarks string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	SubmittedAt *time.Time
	DecidedAt   *time.Time
}

// Catalog resolves the checklist variant this report scores against.
func (r *AuditReport) Catalog() (catalog.Catalog, error) {
	return catalog.Get(r.CenterType, r.PlacementApplicable)
}

// Finalized reports no longer accept score edits.
func (r *AuditReport) Finalized() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// CanEditScores allows observation entry while the report is with the
// auditor: freshly created, or bounced back by a rejection.
func (r *AuditReport) CanEditScores() error {
	switch r.Status {
	case StatusNotSubmitted, StatusRejected:
		return nil
	}
	return dErrors.Newf(dErrors.CodeInvariantViolation, "report in status %q does not accept score edits", r.Status)
}

// ApplyScoreEdit records fresh observations and derived totals. Editing a
// rejected report reopens it.
func (r *AuditReport) ApplyScoreEdit(obs []Observation, areaTotals map[catalog.AreaName]float64, grand float64, verdictAreas [4]compliance.AreaStatus, overall compliance.Status, now time.Time) {
	r.Observations = obs
	r.AreaTotals = areaTotals
	r.GrandTotal = grand
	r.AreaStatuses = verdictAreas
	r.OverallStatus = overall
	if r.Status == StatusRejected {
		r.Status = StatusNotSubmitted
		r.RejectReason = ""
	}
	r.UpdatedAt = now
}

// CanSubmit gates the transition to the supervisor queue.
func (r *AuditReport) CanSubmit() error {
	switch r.Status {
	case StatusNotSubmitted, StatusRejected:
		return nil
	}
	return dErrors.Newf(dErrors.CodeInvariantViolation, "report in status %q cannot be submitted", r.Status)
}

func (r *AuditReport) ApplySubmit(remarks string, now time.Time) {
	r.Status = StatusPending
	r.RejectReason = ""
	r.AuditorRemarks = remarks
	r.SubmittedAt = &now
	r.UpdatedAt = now
}

// CanDecide gates supervisor approval or rejection.
func (r *AuditReport) CanDecide() error {
	if r.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "report in status %q is not pending a decision", r.Status)
	}
	return nil
}

func (r *AuditReport) ApplyApprove(now time.Time) {
	r.Status = StatusApproved
	r.RemarkEdit = RemarkLocked
	r.DecidedAt = &now
	r.UpdatedAt = now
}

func (r *AuditReport) ApplyReject(reason string, now time.Time) {
	r.Status = StatusRejected
	r.RejectReason = reason
	r.DecidedAt = &now
	r.UpdatedAt = now
}

// CanRequestRemarkEdit: center head may ask to annotate an approved report
// whose remarks field is still locked for this approval cycle.
func (r *AuditReport) CanRequestRemarkEdit() error {
	if r.Status != StatusApproved {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "remarks can only be requested on an approved report")
	}
	switch r.RemarkEdit {
	case RemarkLocked:
		return nil
	case RemarkConsumed:
		return dErrors.New(dErrors.CodeInvariantViolation, "remarks were already added for this approval cycle")
	default:
		return dErrors.Newf(dErrors.CodeInvariantViolation, "remark edit already %s", r.RemarkEdit)
	}
}

func (r *AuditReport) ApplyRemarkEditRequest(now time.Time) {
	r.RemarkEdit = RemarkEditRequested
	r.UpdatedAt = now
}

// CanGrantRemarkEdit: supervisor unlocks a requested edit.
func (r *AuditReport) CanGrantRemarkEdit() error {
	if r.RemarkEdit != RemarkEditRequested {
		return dErrors.New(dErrors.CodeInvariantViolation, "no pending remark edit request")
	}
	return nil
}

func (r *AuditReport) ApplyGrantRemarkEdit(now time.Time) {
	r.RemarkEdit = RemarkUnlocked
	r.UpdatedAt = now
}

// CanSubmitRemarks: the field must be unlocked; it relocks on submission.
func (r *AuditReport) CanSubmitRemarks() error {
	if r.RemarkEdit != RemarkUnlocked {
		return dErrors.New(dErrors.CodeInvariantViolation, "remarks field is locked")
	}
	return nil
}

// ApplyRemarks writes per-checkpoint center-head remarks and consumes the
// unlock. Unknown checkpoint ids are the caller's problem; the service
// validates against the catalog first.
func (r *AuditReport) ApplyRemarks(remarks map[string]string, now time.Time) {
	for i := range r.Observations {
		if remark, ok := remarks[r.Observations[i].CheckpointID]; ok {
			r.Observations[i].CenterHeadRemark = remark
		}
	}
	r.RemarkEdit = RemarkConsumed
	r.UpdatedAt = now
}
