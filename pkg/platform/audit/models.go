// Package audit captures the trail of workflow actions around reports and
// users. Events are emitted from services, queued through a publisher, and
// persisted by a background worker; sinks (store, kafka) can fan out.
package audit

import (
	"context"
	"time"

	id "skillaudit/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose, which
// drives retention and routing.
type EventCategory string

const (
	// CategoryWorkflow covers report lifecycle actions with review
	// significance (submission, approval, rejection, remark edits).
	CategoryWorkflow EventCategory = "workflow"

	// CategorySecurity covers authentication and account actions.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers bulk and operational actions (imports,
	// exports, notifications).
	CategoryOperations EventCategory = "operations"
)

// Action names one auditable occurrence.
type Action string

const (
	ActionReportCreated      Action = "report_created"
	ActionReportScored       Action = "report_scored"
	ActionReportSubmitted    Action = "report_submitted"
	ActionReportApproved     Action = "report_approved"
	ActionReportRejected     Action = "report_rejected"
	ActionRemarkEditRequest  Action = "remark_edit_requested"
	ActionRemarkEditGranted  Action = "remark_edit_granted"
	ActionRemarksSubmitted   Action = "remarks_submitted"
	ActionReportEmailed      Action = "report_emailed"
	ActionUserLoggedIn       Action = "user_logged_in"
	ActionUsersImported      Action = "users_imported"
)

// Event is emitted from domain logic to capture key actions. It stays
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Action    Action
	Timestamp time.Time

	ActorID id.UserID

	ReportID      id.ReportID
	CenterCode    string
	FinancialYear string

	// Detail carries the human-readable specifics: a reject reason, an
	// import row count, a login device description.
	Detail string

	RequestID string
}

// Store is the persistence seam for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByReport(ctx context.Context, reportID id.ReportID) ([]Event, error)
	ListByActor(ctx context.Context, actorID id.UserID) ([]Event, error)
}

// Sink receives a copy of every published event; used for the optional
// kafka fan-out.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
}
