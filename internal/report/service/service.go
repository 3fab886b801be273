// Package service orchestrates the audit report lifecycle: creation with
// duplicate redirection, observation entry with full recompute, the
// supervisor workflow, and the center-head remarks sub-workflow.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"skillaudit/internal/catalog"
	centerstore "skillaudit/internal/center/store"
	"skillaudit/internal/compliance"
	reportmetrics "skillaudit/internal/report/metrics"
	"skillaudit/internal/report/models"
	"skillaudit/internal/report/store"
	"skillaudit/internal/scoring"
	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
	"skillaudit/pkg/platform/audit"
	"skillaudit/pkg/platform/sentinel"
	"skillaudit/pkg/requestcontext"
)

// remarkLockTTL bounds how long an abandoned remark submission can keep the
// field locked for other center-head sessions.
const remarkLockTTL = 2 * time.Minute

// AuditPublisher is the emission seam; nil disables auditing (tests).
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

type Service struct {
	reports store.ReportStore
	centers centerstore.CenterStore
	lock    store.RemarkLock
	metrics *reportmetrics.Metrics
	auditor AuditPublisher
	logger  *slog.Logger
	tracer  trace.Tracer
}

func New(reports store.ReportStore, centers centerstore.CenterStore, lock store.RemarkLock,
	m *reportmetrics.Metrics, auditor AuditPublisher, logger *slog.Logger) *Service {
	return &Service{
		reports: reports,
		centers: centers,
		lock:    lock,
		metrics: m,
		auditor: auditor,
		logger:  logger,
		tracer:  otel.Tracer("skillaudit/report"),
	}
}

// CreateParams identifies the audit to open.
type CreateParams struct {
	CenterCode          string
	FinancialYear       string
	AuditDate           time.Time
	PlacementApplicable bool
}

// Create opens a new audit for (center, financial year). A duplicate is not
// a dead end: the conflict carries the existing report id so the client can
// redirect to editing it.
func (s *Service) Create(ctx context.Context, p CreateParams) (*models.AuditReport, error) {
	ctx, span := s.tracer.Start(ctx, "report.Create")
	defer span.End()

	if err := models.ValidateFinancialYear(p.FinancialYear); err != nil {
		return nil, err
	}
	center, err := s.centers.FindByCode(ctx, p.CenterCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "center %q is not registered", p.CenterCode)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve center")
	}

	cat, err := catalog.Get(center.Type, p.PlacementApplicable)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	report := &models.AuditReport{
		ID:                  id.ReportID(uuid.New()),
		CenterID:            center.ID,
		CenterCode:          center.Code,
		CenterName:          center.Name,
		CenterType:          center.Type,
		FinancialYear:       p.FinancialYear,
		AuditDate:           p.AuditDate,
		PlacementApplicable: p.PlacementApplicable,
		Observations:        seedObservations(cat),
		Status:              models.StatusNotSubmitted,
		AuditorID:           requestcontext.UserID(ctx),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.reports.Create(ctx, report); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, s.duplicateConflict(ctx, p.CenterCode, p.FinancialYear)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create report")
	}

	if s.metrics != nil {
		s.metrics.ReportsCreated.Inc()
	}
	s.emit(ctx, report, audit.ActionReportCreated, "")
	return report, nil
}

// duplicateConflict resolves the existing report so the caller gets an edit
// path instead of a bare error.
func (s *Service) duplicateConflict(ctx context.Context, centerCode, fy string) error {
	if s.metrics != nil {
		s.metrics.DuplicateCreates.Inc()
	}
	conflict := dErrors.Newf(dErrors.CodeConflict,
		"an audit for %s in %s already exists", centerCode, fy)
	if existing, err := s.reports.FindByCenterAndYear(ctx, centerCode, fy); err == nil {
		conflict = conflict.WithMeta("existing_report_id", existing.ID.String())
	}
	return conflict
}

func seedObservations(cat catalog.Catalog) []models.Observation {
	var obs []models.Observation
	for _, area := range cat.Areas {
		for _, cp := range area.Checkpoints {
			obs = append(obs, models.Observation{CheckpointID: cp.ID, MaxScore: cp.MaxScore})
		}
	}
	return obs
}

func (s *Service) Get(ctx context.Context, reportID id.ReportID) (*models.AuditReport, error) {
	r, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, wrapReportErr(err)
	}
	return r, nil
}

func (s *Service) ListByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.AuditReport, error) {
	return s.reports.ListByStatus(ctx, status)
}

func (s *Service) ListByCenter(ctx context.Context, centerCode string) ([]*models.AuditReport, error) {
	return s.reports.ListByCenter(ctx, centerCode)
}

// ObservationEntry is one checkpoint's raw input from the auditor.
type ObservationEntry struct {
	CheckpointID     string
	TotalSamples     int
	SamplesCompliant int
	Remarks          string
}

// UpdateObservations overlays the entries onto the stored observations and
// recomputes the entire report: every score from its own counts, then DP1
// propagation, totals and classification. Recomputing everything after any
// mutation is what makes the DP1 linkage order-independent.
func (s *Service) UpdateObservations(ctx context.Context, reportID id.ReportID, entries []ObservationEntry) (*models.AuditReport, error) {
	ctx, span := s.tracer.Start(ctx, "report.UpdateObservations")
	defer span.End()

	current, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, wrapReportErr(err)
	}
	cat, err := current.Catalog()
	if err != nil {
		return nil, err
	}

	inputs, err := overlay(cat, current.Observations, entries)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scored, err := scoring.Recompute(cat, inputs)
	if err != nil {
		return nil, err
	}
	totals := scoring.Aggregate(cat, scored)
	verdict := compliance.Classify(cat, totals)
	if s.metrics != nil {
		s.metrics.RecomputeMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}

	obs := make([]models.Observation, len(scored))
	byID := remarkIndex(current.Observations)
	for i, sc := range scored {
		obs[i] = models.Observation{
			CheckpointID:     sc.CheckpointID,
			TotalSamples:     sc.TotalSamples,
			SamplesCompliant: sc.SamplesCompliant,
			Remarks:          sc.Remarks,
			CompliantPercent: sc.Percent,
			Score:            sc.Score,
			MaxScore:         sc.MaxScore,
			CenterHeadRemark: byID[sc.CheckpointID],
		}
	}

	now := requestcontext.Now(ctx)
	updated, err := s.reports.Execute(ctx, reportID,
		func(r *models.AuditReport) error { return r.CanEditScores() },
		func(r *models.AuditReport) {
			r.ApplyScoreEdit(obs, totals.Areas, totals.Grand, verdict.Areas, verdict.Overall, now)
		},
	)
	if err != nil {
		return nil, wrapReportErr(err)
	}

	s.emit(ctx, updated, audit.ActionReportScored, "")
	return updated, nil
}

// overlay merges entries into the stored observation set, keeping the
// catalog's checkpoint order, and rejects entries for checkpoints outside
// the active catalog.
func overlay(cat catalog.Catalog, current []models.Observation, entries []ObservationEntry) ([]scoring.Input, error) {
	byID := make(map[string]scoring.Input, len(current))
	for _, o := range current {
		byID[o.CheckpointID] = scoring.Input{
			CheckpointID:     o.CheckpointID,
			TotalSamples:     o.TotalSamples,
			SamplesCompliant: o.SamplesCompliant,
			Remarks:          o.Remarks,
		}
	}
	for _, e := range entries {
		if _, err := cat.Checkpoint(e.CheckpointID); err != nil {
			return nil, err
		}
		byID[e.CheckpointID] = scoring.Input{
			CheckpointID:     e.CheckpointID,
			TotalSamples:     e.TotalSamples,
			SamplesCompliant: e.SamplesCompliant,
			Remarks:          e.Remarks,
		}
	}

	var inputs []scoring.Input
	for _, area := range cat.Areas {
		for _, cp := range area.Checkpoints {
			if in, ok := byID[cp.ID]; ok {
				inputs = append(inputs, in)
			} else {
				inputs = append(inputs, scoring.Input{CheckpointID: cp.ID})
			}
		}
	}
	return inputs, nil
}

func remarkIndex(obs []models.Observation) map[string]string {
	out := make(map[string]string, len(obs))
	for _, o := range obs {
		if o.CenterHeadRemark != "" {
			out[o.CheckpointID] = o.CenterHeadRemark
		}
	}
	return out
}

// Submit moves the report to the supervisor queue.
func (s *Service) Submit(ctx context.Context, reportID id.ReportID, auditorRemarks string) (*models.AuditReport, error) {
	now := requestcontext.Now(ctx)
	updated, err := s.reports.Execute(ctx, reportID,
		func(r *models.AuditReport) error { return r.CanSubmit() },
		func(r *models.AuditReport) { r.ApplySubmit(auditorRemarks, now) },
	)
	if err != nil {
		return nil, wrapReportErr(err)
	}
	if s.metrics != nil {
		s.metrics.ReportsSubmitted.Inc()
	}
	s.emit(ctx, updated, audit.ActionReportSubmitted, "")
	return updated, nil
}

func (s *Service) Approve(ctx context.Context, reportID id.ReportID) (*models.AuditReport, error) {
	now := requestcontext.Now(ctx)
	updated, err := s.reports.Execute(ctx, reportID,
		func(r *models.AuditReport) error { return r.CanDecide() },
		func(r *models.AuditReport) { r.ApplyApprove(now) },
	)
	if err != nil {
		return nil, wrapReportErr(err)
	}
	if s.metrics != nil {
		s.metrics.ReportsApproved.Inc()
	}
	s.emit(ctx, updated, audit.ActionReportApproved, "")
	return updated, nil
}

func (s *Service) Reject(ctx context.Context, reportID id.ReportID, reason string) (*models.AuditReport, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "a rejection reason is required")
	}
	now := requestcontext.Now(ctx)
	updated, err := s.reports.Execute(ctx, reportID,
		func(r *models.AuditReport) error { return r.CanDecide() },
		func(r *models.AuditReport) { r.ApplyReject(reason, now) },
	)
	if err != nil {
		return nil, wrapReportErr(err)
	}
	if s.metrics != nil {
		s.metrics.ReportsRejected.Inc()
	}
	s.emit(ctx, updated, audit.ActionReportRejected, reason)
	return updated, nil
}

// RequestRemarkEdit starts the center-head annotation cycle.
func (s *Service) RequestRemarkEdit(ctx context.Context, reportID id.ReportID) (*models.AuditReport, error) {
	now := requestcontext.Now(ctx)
	updated, err := s.reports.Execute(ctx, reportID,
		func(r *models.AuditReport) error { return r.CanRequestRemarkEdit() },
		func(r *models.AuditReport) { r.ApplyRemarkEditRequest(now) },
	)
	if err != nil {
		return nil, wrapReportErr(err)
	}
	s.emit(ctx, updated, audit.ActionRemarkEditRequest, "")
	return updated, nil
}

// GrantRemarkEdit unlocks the remarks field for one submission.
func (s *Service) GrantRemarkEdit(ctx context.Context, reportID id.ReportID) (*models.AuditReport, error) {
	now := requestcontext.Now(ctx)
	updated, err := s.reports.Execute(ctx, reportID,
		func(r *models.AuditReport) error { return r.CanGrantRemarkEdit() },
		func(r *models.AuditReport) { r.ApplyGrantRemarkEdit(now) },
	)
	if err != nil {
		return nil, wrapReportErr(err)
	}
	s.emit(ctx, updated, audit.ActionRemarkEditGranted, "")
	return updated, nil
}

// SubmitRemarks writes per-checkpoint center-head remarks and relocks the
// field. The distributed lock serializes concurrent submissions before the
// state machine consumes the unlock.
func (s *Service) SubmitRemarks(ctx context.Context, reportID id.ReportID, remarks map[string]string) (*models.AuditReport, error) {
	if len(remarks) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one remark is required")
	}

	current, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		return nil, wrapReportErr(err)
	}
	cat, err := current.Catalog()
	if err != nil {
		return nil, err
	}
	for checkpointID := range remarks {
		if _, err := cat.Checkpoint(checkpointID); err != nil {
			return nil, err
		}
	}

	acquired, err := s.lock.Acquire(ctx, reportID, remarkLockTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "remark lock unavailable")
	}
	if !acquired {
		return nil, dErrors.New(dErrors.CodeConflict, "remarks are being submitted by another session")
	}
	defer func() {
		if err := s.lock.Release(ctx, reportID); err != nil {
			s.logger.WarnContext(ctx, "remark lock release failed",
				"report_id", reportID,
				"error", err,
			)
		}
	}()

	now := requestcontext.Now(ctx)
	updated, err := s.reports.Execute(ctx, reportID,
		func(r *models.AuditReport) error { return r.CanSubmitRemarks() },
		func(r *models.AuditReport) { r.ApplyRemarks(remarks, now) },
	)
	if err != nil {
		return nil, wrapReportErr(err)
	}
	s.emit(ctx, updated, audit.ActionRemarksSubmitted, "")
	return updated, nil
}

func (s *Service) emit(ctx context.Context, r *models.AuditReport, action audit.Action, detail string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Category:      audit.CategoryWorkflow,
		Action:        action,
		ActorID:       requestcontext.UserID(ctx),
		ReportID:      r.ID,
		CenterCode:    r.CenterCode,
		FinancialYear: r.FinancialYear,
		Detail:        detail,
		RequestID:     requestcontext.RequestID(ctx),
	})
}

func wrapReportErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "report not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "report was modified concurrently")
	default:
		var de *dErrors.Error
		if errors.As(err, &de) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "report store failure")
	}
}
