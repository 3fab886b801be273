package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "skillaudit/pkg/domain-errors"
)

func newReport(status WorkflowStatus) *AuditReport {
	return &AuditReport{
		CenterCode:    "DL-0042",
		FinancialYear: "2025-26",
		Status:        status,
		Observations: []Observation{
			{CheckpointID: "FO1"},
			{CheckpointID: "DP1"},
		},
	}
}

func TestWorkflowTransitions(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	t.Run("not submitted to pending", func(t *testing.T) {
		r := newReport(StatusNotSubmitted)
		require.NoError(t, r.CanSubmit())
		r.ApplySubmit("all registers inspected", now)
		assert.Equal(t, StatusPending, r.Status)
		require.NotNil(t, r.SubmittedAt)
	})

	t.Run("pending to approved locks remarks", func(t *testing.T) {
		r := newReport(StatusPending)
		require.NoError(t, r.CanDecide())
		r.ApplyApprove(now)
		assert.Equal(t, StatusApproved, r.Status)
		assert.Equal(t, RemarkLocked, r.RemarkEdit)
	})

	t.Run("pending to rejected carries a structured reason", func(t *testing.T) {
		r := newReport(StatusPending)
		r.ApplyReject("fee register photos missing", now)
		assert.Equal(t, StatusRejected, r.Status)
		assert.Equal(t, "fee register photos missing", r.RejectReason)
	})

	t.Run("rejected is resubmittable", func(t *testing.T) {
		r := newReport(StatusRejected)
		r.RejectReason = "incomplete"
		require.NoError(t, r.CanSubmit())
		r.ApplySubmit("", now)
		assert.Equal(t, StatusPending, r.Status)
		assert.Empty(t, r.RejectReason)
	})

	t.Run("approved cannot be submitted or edited", func(t *testing.T) {
		r := newReport(StatusApproved)
		err := r.CanSubmit()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		assert.Error(t, r.CanEditScores())
	})

	t.Run("pending cannot be decided twice", func(t *testing.T) {
		r := newReport(StatusPending)
		r.ApplyApprove(now)
		assert.Error(t, r.CanDecide())
	})
}

func TestScoreEditReopensRejected(t *testing.T) {
	now := time.Now()
	r := newReport(StatusRejected)
	r.RejectReason = "redo DP sampling"

	require.NoError(t, r.CanEditScores())
	r.ApplyScoreEdit(r.Observations, nil, 0, r.AreaStatuses, "", now)
	assert.Equal(t, StatusNotSubmitted, r.Status)
	assert.Empty(t, r.RejectReason)
}

func TestRemarkEditCycle(t *testing.T) {
	now := time.Now()

	r := newReport(StatusPending)
	r.ApplyApprove(now)

	t.Run("full cycle runs once", func(t *testing.T) {
		require.NoError(t, r.CanRequestRemarkEdit())
		r.ApplyRemarkEditRequest(now)

		require.NoError(t, r.CanGrantRemarkEdit())
		r.ApplyGrantRemarkEdit(now)

		require.NoError(t, r.CanSubmitRemarks())
		r.ApplyRemarks(map[string]string{"FO1": "register since replaced"}, now)

		assert.Equal(t, RemarkConsumed, r.RemarkEdit)
		assert.Equal(t, "register since replaced", r.Observations[0].CenterHeadRemark)
		assert.Empty(t, r.Observations[1].CenterHeadRemark)
	})

	t.Run("second request in the same cycle is refused", func(t *testing.T) {
		err := r.CanRequestRemarkEdit()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("submit without unlock is refused", func(t *testing.T) {
		fresh := newReport(StatusPending)
		fresh.ApplyApprove(now)
		assert.Error(t, fresh.CanSubmitRemarks())
	})

	t.Run("grant without request is refused", func(t *testing.T) {
		fresh := newReport(StatusPending)
		fresh.ApplyApprove(now)
		assert.Error(t, fresh.CanGrantRemarkEdit())
	})

	t.Run("request before approval is refused", func(t *testing.T) {
		fresh := newReport(StatusPending)
		assert.Error(t, fresh.CanRequestRemarkEdit())
	})
}

func TestValidateFinancialYear(t *testing.T) {
	require.NoError(t, ValidateFinancialYear("2025-26"))
	for _, bad := range []string{"", "2025", "25-26", "2025/26", "2025-2026"} {
		err := ValidateFinancialYear(bad)
		require.Error(t, err, bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	}
}

func TestParseWorkflowStatus(t *testing.T) {
	got, err := ParseWorkflowStatus("pending_with_supervisor")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got)

	_, err = ParseWorkflowStatus("archived")
	require.Error(t, err)
}
