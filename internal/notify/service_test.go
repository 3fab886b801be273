package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillaudit/internal/catalog"
	centermodels "skillaudit/internal/center/models"
	centerstore "skillaudit/internal/center/store"
	"skillaudit/internal/compliance"
	"skillaudit/internal/report/models"
	"skillaudit/internal/scoring"
	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
	"skillaudit/pkg/platform/audit"
)

type fakeMailer struct {
	sent []Message
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, msg Message) error {
	if m.fail {
		return context.DeadlineExceeded
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeAuditor struct {
	events []audit.Event
}

func (a *fakeAuditor) Emit(_ context.Context, e audit.Event) {
	a.events = append(a.events, e)
}

func setup(t *testing.T) (*Service, *fakeMailer, *fakeAuditor, centerstore.CenterStore) {
	t.Helper()
	centers := centerstore.NewInMemory()
	mailer := &fakeMailer{}
	auditor := &fakeAuditor{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(centers, mailer, auditor, logger), mailer, auditor, centers
}

func seedCenter(t *testing.T, centers centerstore.CenterStore, email string) {
	t.Helper()
	require.NoError(t, centers.Create(context.Background(), &centermodels.Center{
		ID:        id.CenterID(uuid.New()),
		Code:      "DL-0042",
		Name:      "Rohini Skill Center",
		Type:      catalog.CenterCDC,
		HeadName:  "R. Sharma",
		HeadEmail: email,
		Active:    true,
	}))
}

func approvedReport(t *testing.T) *models.AuditReport {
	t.Helper()
	cat, err := catalog.Get(catalog.CenterCDC, true)
	require.NoError(t, err)

	var inputs []scoring.Input
	for _, area := range cat.Areas {
		for _, cp := range area.Checkpoints {
			inputs = append(inputs, scoring.Input{CheckpointID: cp.ID, TotalSamples: 10, SamplesCompliant: 10})
		}
	}
	scored, err := scoring.Recompute(cat, inputs)
	require.NoError(t, err)
	totals := scoring.Aggregate(cat, scored)
	verdict := compliance.Classify(cat, totals)

	obs := make([]models.Observation, len(scored))
	for i, sc := range scored {
		obs[i] = models.Observation{
			CheckpointID: sc.CheckpointID, TotalSamples: sc.TotalSamples,
			SamplesCompliant: sc.SamplesCompliant, CompliantPercent: sc.Percent,
			Score: sc.Score, MaxScore: sc.MaxScore,
		}
	}
	return &models.AuditReport{
		ID:                  id.ReportID(uuid.New()),
		CenterCode:          "DL-0042",
		CenterName:          "Rohini Skill Center",
		CenterType:          catalog.CenterCDC,
		FinancialYear:       "2025-26",
		AuditDate:           time.Now(),
		PlacementApplicable: true,
		Observations:        obs,
		AreaTotals:          totals.Areas,
		GrandTotal:          totals.Grand,
		AreaStatuses:        verdict.Areas,
		OverallStatus:       verdict.Overall,
		Status:              models.StatusApproved,
	}
}

func TestSendReport(t *testing.T) {
	svc, mailer, auditor, centers := setup(t)
	seedCenter(t, centers, "head@example.org")

	err := svc.SendReport(context.Background(), approvedReport(t))
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "head@example.org", msg.To[0].Email)
	assert.Equal(t, "Audit Report - Rohini Skill Center - Score: 100.00/100 - Compliant", msg.Subject)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	assert.True(t, strings.HasPrefix(string(msg.Attachments[0].Content), "%PDF-"))

	require.Len(t, auditor.events, 1)
	assert.Equal(t, audit.ActionReportEmailed, auditor.events[0].Action)
	assert.Equal(t, "head@example.org", auditor.events[0].Detail)
}

func TestSendReportRequiresApproval(t *testing.T) {
	svc, mailer, _, centers := setup(t)
	seedCenter(t, centers, "head@example.org")

	r := approvedReport(t)
	r.Status = models.StatusPending
	err := svc.SendReport(context.Background(), r)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Empty(t, mailer.sent)
}

func TestSendReportMissingHeadEmail(t *testing.T) {
	svc, _, _, centers := setup(t)
	seedCenter(t, centers, "")

	err := svc.SendReport(context.Background(), approvedReport(t))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestSendReportMailerFailure(t *testing.T) {
	svc, mailer, auditor, centers := setup(t)
	seedCenter(t, centers, "head@example.org")
	mailer.fail = true

	err := svc.SendReport(context.Background(), approvedReport(t))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Empty(t, auditor.events)
}
