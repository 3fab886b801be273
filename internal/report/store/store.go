// Package store declares the persistence seams for audit reports. Stores
// are interface-driven so services stay testable against the in-memory
// implementation and production runs on PostgreSQL without rewiring.
package store

import (
	"context"
	"time"

	"skillaudit/internal/report/models"
	id "skillaudit/pkg/domain"
)

// ReportStore persists audit reports.
//
// Create must enforce the one-report-per-(centerCode, financialYear)
// invariant atomically (unique constraint, not check-then-insert) and
// return sentinel.ErrConflict on a duplicate.
//
// Execute loads the report, runs validate and mutate under the store's own
// lock (mutex in memory, row lock in PostgreSQL), and persists the result.
// This is the only write path for workflow transitions, so concurrent
// submissions cannot interleave between check and update.
type ReportStore interface {
	Create(ctx context.Context, report *models.AuditReport) error
	FindByID(ctx context.Context, reportID id.ReportID) (*models.AuditReport, error)
	FindByCenterAndYear(ctx context.Context, centerCode, financialYear string) (*models.AuditReport, error)
	ListByStatus(ctx context.Context, status models.WorkflowStatus) ([]*models.AuditReport, error)
	ListByCenter(ctx context.Context, centerCode string) ([]*models.AuditReport, error)
	Execute(ctx context.Context, reportID id.ReportID,
		validate func(*models.AuditReport) error,
		mutate func(*models.AuditReport)) (*models.AuditReport, error)
}

// RemarkLock is the cross-instance guard for center-head remark
// submission: Acquire is a compare-and-set that succeeds for exactly one
// caller until release or expiry. The workflow state machine enforces
// once-per-cycle; this lock closes the race between two concurrent
// submissions hitting different instances.
type RemarkLock interface {
	Acquire(ctx context.Context, reportID id.ReportID, ttl time.Duration) (bool, error)
	Release(ctx context.Context, reportID id.ReportID) error
}
