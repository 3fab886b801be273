// Package domain holds typed identifiers shared across features.
//
// IDs are distinct named types over uuid.UUID so the compiler rejects
// cross-assignment (a ReportID can never be passed where a UserID is
// expected). Parse helpers enforce the invariant that IDs are valid,
// non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "skillaudit/pkg/domain-errors"
)

type (
	// UserID identifies an application user (auditor, supervisor,
	// center head or admin).
	UserID uuid.UUID

	// ReportID identifies a single audit report instance.
	ReportID uuid.UUID

	// CenterID identifies a training center.
	CenterID uuid.UUID
)

func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id ReportID) String() string { return uuid.UUID(id).String() }
func (id CenterID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ReportID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id CenterID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseReportID parses and validates a report ID from its string form.
func ParseReportID(s string) (ReportID, error) {
	u, err := parseUUID(s, "report id")
	return ReportID(u), err
}

// ParseCenterID parses and validates a center ID from its string form.
func ParseCenterID(s string) (CenterID, error) {
	u, err := parseUUID(s, "center id")
	return CenterID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" is not a valid uuid")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, what+" must not be the nil uuid")
	}
	return u, nil
}
