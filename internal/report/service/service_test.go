package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"skillaudit/internal/catalog"
	centermodels "skillaudit/internal/center/models"
	centerstore "skillaudit/internal/center/store"
	"skillaudit/internal/compliance"
	"skillaudit/internal/report/models"
	"skillaudit/internal/report/store"
	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
	"skillaudit/pkg/platform/audit"
	"skillaudit/pkg/requestcontext"
)

type captureAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (c *captureAudit) Emit(_ context.Context, e audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureAudit) actions() []audit.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]audit.Action, len(c.events))
	for i, e := range c.events {
		out[i] = e.Action
	}
	return out
}

type ServiceSuite struct {
	suite.Suite

	ctx     context.Context
	now     time.Time
	svc     *Service
	lock    *store.InMemoryRemarkLock
	auditor *captureAudit
	center  *centermodels.Center
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2026, time.March, 12, 10, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithUserID(s.ctx, id.UserID(uuid.New()))

	centers := centerstore.NewInMemory()
	s.center = &centermodels.Center{
		ID:        id.CenterID(uuid.New()),
		Code:      "DL-0042",
		Name:      "Rohini Skill Center",
		Type:      catalog.CenterCDC,
		HeadName:  "R. Sharma",
		HeadEmail: "head@example.org",
		Active:    true,
	}
	s.Require().NoError(centers.Create(s.ctx, s.center))

	s.lock = store.NewInMemoryRemarkLock()
	s.auditor = &captureAudit{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = New(store.NewInMemory(), centers, s.lock, nil, s.auditor, logger)
}

func (s *ServiceSuite) create() *models.AuditReport {
	r, err := s.svc.Create(s.ctx, CreateParams{
		CenterCode:          "DL-0042",
		FinancialYear:       "2025-26",
		AuditDate:           s.now,
		PlacementApplicable: true,
	})
	s.Require().NoError(err)
	return r
}

// perfectEntries fills every checkpoint with fully compliant counts.
func perfectEntries(t *testing.T, r *models.AuditReport) []ObservationEntry {
	t.Helper()
	cat, err := r.Catalog()
	require.NoError(t, err)
	var entries []ObservationEntry
	for _, area := range cat.Areas {
		for _, cp := range area.Checkpoints {
			entries = append(entries, ObservationEntry{
				CheckpointID:     cp.ID,
				TotalSamples:     10,
				SamplesCompliant: 10,
			})
		}
	}
	return entries
}

func (s *ServiceSuite) TestCreateSeedsChecklist() {
	r := s.create()

	s.Equal(models.StatusNotSubmitted, r.Status)
	s.Equal(s.center.ID, r.CenterID)
	s.Equal("Rohini Skill Center", r.CenterName)
	s.Len(r.Observations, 19)
	for _, o := range r.Observations {
		s.Zero(o.TotalSamples)
		s.Positive(o.MaxScore)
	}
	s.Equal([]audit.Action{audit.ActionReportCreated}, s.auditor.actions())
}

func (s *ServiceSuite) TestCreateUnknownCenter() {
	_, err := s.svc.Create(s.ctx, CreateParams{CenterCode: "XX-9999", FinancialYear: "2025-26", AuditDate: s.now})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestCreateBadFinancialYear() {
	_, err := s.svc.Create(s.ctx, CreateParams{CenterCode: "DL-0042", FinancialYear: "FY2025", AuditDate: s.now})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestCreateDuplicateCarriesExistingID() {
	first := s.create()

	_, err := s.svc.Create(s.ctx, CreateParams{
		CenterCode:    "dl-0042", // case must not dodge the uniqueness key
		FinancialYear: "2025-26",
		AuditDate:     s.now,
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	var de *dErrors.Error
	s.Require().ErrorAs(err, &de)
	s.Equal(first.ID.String(), de.Meta["existing_report_id"])
}

func (s *ServiceSuite) TestUpdateObservationsRecomputesEverything() {
	r := s.create()

	updated, err := s.svc.UpdateObservations(s.ctx, r.ID, perfectEntries(s.T(), r))
	s.Require().NoError(err)

	s.InDelta(100.0, updated.GrandTotal, 0.001)
	s.Equal(compliance.StatusCompliant, updated.OverallStatus)
	s.InDelta(30.0, updated.AreaTotals[catalog.AreaFrontOffice], 0.001)
	s.InDelta(15.0, updated.AreaTotals[catalog.AreaPlacement], 0.001)
}

func (s *ServiceSuite) TestUpdateObservationsMergesPartialEntries() {
	r := s.create()
	_, err := s.svc.UpdateObservations(s.ctx, r.ID, perfectEntries(s.T(), r))
	s.Require().NoError(err)

	// Degrade a single mandatory-binary checkpoint; everything else keeps
	// its stored counts and the linked DP checkpoints zero out.
	updated, err := s.svc.UpdateObservations(s.ctx, r.ID, []ObservationEntry{
		{CheckpointID: "DP1", TotalSamples: 10, SamplesCompliant: 9},
	})
	s.Require().NoError(err)

	scores := make(map[string]float64)
	for _, o := range updated.Observations {
		scores[o.CheckpointID] = o.Score
	}
	s.Zero(scores["DP1"])
	s.Zero(scores["DP3"])
	s.Zero(scores["DP7"])
	s.Positive(scores["DP2"])
	s.Positive(scores["FO1"])
	s.Less(updated.GrandTotal, 100.0)
}

func (s *ServiceSuite) TestUpdateObservationsUnknownCheckpoint() {
	r := s.create()
	_, err := s.svc.UpdateObservations(s.ctx, r.ID, []ObservationEntry{
		{CheckpointID: "ZZ9", TotalSamples: 1, SamplesCompliant: 1},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestUpdateObservationsBlockedWhilePending() {
	r := s.create()
	_, err := s.svc.UpdateObservations(s.ctx, r.ID, perfectEntries(s.T(), r))
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, r.ID, "ready for review")
	s.Require().NoError(err)

	_, err = s.svc.UpdateObservations(s.ctx, r.ID, []ObservationEntry{
		{CheckpointID: "FO1", TotalSamples: 10, SamplesCompliant: 5},
	})
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ServiceSuite) TestSubmitApprove() {
	r := s.create()
	_, err := s.svc.UpdateObservations(s.ctx, r.ID, perfectEntries(s.T(), r))
	s.Require().NoError(err)

	pending, err := s.svc.Submit(s.ctx, r.ID, "all checkpoints verified")
	s.Require().NoError(err)
	s.Equal(models.StatusPending, pending.Status)
	s.Require().NotNil(pending.SubmittedAt)
	s.Equal(s.now, *pending.SubmittedAt)

	approved, err := s.svc.Approve(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, approved.Status)
	s.Equal(models.RemarkLocked, approved.RemarkEdit)
}

func (s *ServiceSuite) TestRejectRequiresReason() {
	r := s.create()
	_, err := s.svc.Submit(s.ctx, r.ID, "")
	s.Require().NoError(err)

	_, err = s.svc.Reject(s.ctx, r.ID, "   ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	rejected, err := s.svc.Reject(s.ctx, r.ID, "safety observations missing evidence")
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, rejected.Status)
	s.Equal("safety observations missing evidence", rejected.RejectReason)
}

func (s *ServiceSuite) TestRejectedReportIsEditableAndResubmittable() {
	r := s.create()
	_, err := s.svc.Submit(s.ctx, r.ID, "")
	s.Require().NoError(err)
	_, err = s.svc.Reject(s.ctx, r.ID, "incomplete")
	s.Require().NoError(err)

	reopened, err := s.svc.UpdateObservations(s.ctx, r.ID, perfectEntries(s.T(), r))
	s.Require().NoError(err)
	s.Equal(models.StatusNotSubmitted, reopened.Status)
	s.Empty(reopened.RejectReason)

	_, err = s.svc.Submit(s.ctx, r.ID, "resubmitting with evidence")
	s.NoError(err)
}

func (s *ServiceSuite) approved() *models.AuditReport {
	r := s.create()
	_, err := s.svc.UpdateObservations(s.ctx, r.ID, perfectEntries(s.T(), r))
	s.Require().NoError(err)
	_, err = s.svc.Submit(s.ctx, r.ID, "")
	s.Require().NoError(err)
	approved, err := s.svc.Approve(s.ctx, r.ID)
	s.Require().NoError(err)
	return approved
}

func (s *ServiceSuite) TestRemarkCycle() {
	r := s.approved()

	requested, err := s.svc.RequestRemarkEdit(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.RemarkEditRequested, requested.RemarkEdit)

	granted, err := s.svc.GrantRemarkEdit(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal(models.RemarkUnlocked, granted.RemarkEdit)

	done, err := s.svc.SubmitRemarks(s.ctx, r.ID, map[string]string{
		"FO2": "washroom repair contracted for April",
	})
	s.Require().NoError(err)
	s.Equal(models.RemarkConsumed, done.RemarkEdit)
	for _, o := range done.Observations {
		if o.CheckpointID == "FO2" {
			s.Equal("washroom repair contracted for April", o.CenterHeadRemark)
		}
	}

	// One annotation round per approval cycle.
	_, err = s.svc.RequestRemarkEdit(s.ctx, r.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ServiceSuite) TestSubmitRemarksValidatesCheckpoints() {
	r := s.approved()
	_, err := s.svc.RequestRemarkEdit(s.ctx, r.ID)
	s.Require().NoError(err)
	_, err = s.svc.GrantRemarkEdit(s.ctx, r.ID)
	s.Require().NoError(err)

	_, err = s.svc.SubmitRemarks(s.ctx, r.ID, map[string]string{"ZZ9": "bogus"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.SubmitRemarks(s.ctx, r.ID, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestSubmitRemarksContendedLock() {
	r := s.approved()
	_, err := s.svc.RequestRemarkEdit(s.ctx, r.ID)
	s.Require().NoError(err)
	_, err = s.svc.GrantRemarkEdit(s.ctx, r.ID)
	s.Require().NoError(err)

	held, err := s.lock.Acquire(s.ctx, r.ID, time.Minute)
	s.Require().NoError(err)
	s.Require().True(held)

	_, err = s.svc.SubmitRemarks(s.ctx, r.ID, map[string]string{"FO1": "noted"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	s.Require().NoError(s.lock.Release(s.ctx, r.ID))
	done, err := s.svc.SubmitRemarks(s.ctx, r.ID, map[string]string{"FO1": "noted"})
	s.Require().NoError(err)
	s.Equal(models.RemarkConsumed, done.RemarkEdit)
}

func (s *ServiceSuite) TestAuditTrailOrder() {
	r := s.approved()
	_, err := s.svc.RequestRemarkEdit(s.ctx, r.ID)
	s.Require().NoError(err)

	s.Equal([]audit.Action{
		audit.ActionReportCreated,
		audit.ActionReportScored,
		audit.ActionReportSubmitted,
		audit.ActionReportApproved,
		audit.ActionRemarkEditRequest,
	}, s.auditor.actions())
}
