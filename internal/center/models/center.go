// Package models defines the training-center registry entries that audits
// are filed against.
package models

import (
	"strings"

	"skillaudit/internal/catalog"
	id "skillaudit/pkg/domain"
	dErrors "skillaudit/pkg/domain-errors"
)

// Center is one training center. Code is the business key auditors use
// ("DL-0042"); reports reference both the id and the code.
type Center struct {
	ID   id.CenterID
	Code string
	Name string
	Type catalog.CenterType

	HeadName  string
	HeadEmail string

	Active bool
}

// Validate checks the registry invariants before a center is stored.
func (c *Center) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return dErrors.New(dErrors.CodeValidation, "center code is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "center name is required")
	}
	if _, err := catalog.ParseCenterType(string(c.Type)); err != nil {
		return err
	}
	return nil
}
