// Package models defines application users and their roles.
package models

import (
	"strings"
	"time"

	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
)

// Role gates what a user may do in the audit workflow.
type Role string

const (
	// RoleAdmin manages users and centers.
	RoleAdmin Role = "admin"
	// RoleAuditor files and edits audit reports.
	RoleAuditor Role = "auditor"
	// RoleSupervisor approves or rejects submitted reports and grants
	// remark edits.
	RoleSupervisor Role = "supervisor"
	// RoleCenterHead views approved reports for their center and submits
	// remarks.
	RoleCenterHead Role = "centerhead"
)

// ParseRole validates a role from external input (login claims, import rows).
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleAuditor:
		return RoleAuditor, nil
	case RoleSupervisor:
		return RoleSupervisor, nil
	case RoleCenterHead:
		return RoleCenterHead, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown role %q", s)
}

// User is an application account. PasswordHash is bcrypt; the plaintext
// never leaves the login and import paths.
type User struct {
	ID           id.UserID
	Username     string
	PasswordHash string

	FirstName string
	LastName  string
	Email     string
	Mobile    string

	Role   Role
	Active bool

	CreatedAt time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validate checks account invariants before storage.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if u.PasswordHash == "" {
		return dErrors.New(dErrors.CodeValidation, "password hash is required")
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}
	return nil
}
