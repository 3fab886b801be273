// Package catalog defines the audit checklist: four areas of checkpoints
// whose maximum scores depend on the center type and on whether the
// placement area applies. The catalog is pure configuration — lookups are
// deterministic and share no mutable state.
package catalog

import (
	"strings"

	dErrors "skillaudit/pkg/domain-errors"
)

// CenterType distinguishes the checklist families. CDC and SDC share one
// checkpoint table; DTV (mobile delivery vans) diverges in the Management
// Process area and in its redistribution weights.
type CenterType string

const (
	CenterCDC CenterType = "CDC"
	CenterSDC CenterType = "SDC"
	CenterDTV CenterType = "DTV"
)

// ParseCenterType validates a center type from external input.
func ParseCenterType(s string) (CenterType, error) {
	switch CenterType(strings.ToUpper(strings.TrimSpace(s))) {
	case CenterCDC:
		return CenterCDC, nil
	case CenterSDC:
		return CenterSDC, nil
	case CenterDTV:
		return CenterDTV, nil
	}
	return "", dErrors.Newf(dErrors.CodeBadRequest, "unknown center type %q", s)
}

// AreaName names one of the four audit areas.
type AreaName string

const (
	AreaFrontOffice     AreaName = "Front Office"
	AreaDeliveryProcess AreaName = "Delivery Process"
	AreaPlacement       AreaName = "Placement Process"
	AreaManagement      AreaName = "Management Process"
)

// AreaNames lists the areas in report order.
var AreaNames = [4]AreaName{AreaFrontOffice, AreaDeliveryProcess, AreaPlacement, AreaManagement}

// Checkpoint is a single auditable item. Weightage is documentation only
// and plays no part in score math; MaxScore is the scoring ceiling for the
// active (centerType, placementApplicable) variant.
type Checkpoint struct {
	ID        string
	Name      string
	Weightage float64
	MaxScore  float64
}

// Area groups checkpoints under a total-score ceiling. Applicable is false
// only for the Placement area on reports where placement does not apply;
// such an area carries no checkpoints and a zero ceiling.
type Area struct {
	Name        AreaName
	TotalScore  float64
	Applicable  bool
	Checkpoints []Checkpoint
}

// Catalog is the full checklist for one variant.
type Catalog struct {
	CenterType          CenterType
	PlacementApplicable bool
	Areas               [4]Area

	index map[string]int // checkpoint id -> area position
}

// Get returns the checklist for the given variant. The returned catalog is
// a fresh copy; callers may not mutate shared configuration.
func Get(centerType CenterType, placementApplicable bool) (Catalog, error) {
	switch centerType {
	case CenterCDC, CenterSDC, CenterDTV:
	default:
		return Catalog{}, dErrors.Newf(dErrors.CodeBadRequest, "unknown center type %q", centerType)
	}

	src := variantFor(centerType, placementApplicable)
	c := Catalog{
		CenterType:          centerType,
		PlacementApplicable: placementApplicable,
		index:               make(map[string]int),
	}
	for i, a := range src {
		area := Area{
			Name:        a.name,
			TotalScore:  a.total,
			Applicable:  a.applicable,
			Checkpoints: make([]Checkpoint, len(a.checkpoints)),
		}
		copy(area.Checkpoints, a.checkpoints)
		c.Areas[i] = area
		for _, cp := range area.Checkpoints {
			c.index[cp.ID] = i
		}
	}
	return c, nil
}

// Checkpoint looks up a checkpoint by id. A miss is a loud configuration
// error, never a silent zero — a defaulted score would be indistinguishable
// from a legitimate one.
func (c Catalog) Checkpoint(id string) (Checkpoint, error) {
	i, ok := c.index[id]
	if !ok {
		return Checkpoint{}, dErrors.Newf(dErrors.CodeNotFound, "checkpoint %q not found in %s catalog", id, c.CenterType)
	}
	for _, cp := range c.Areas[i].Checkpoints {
		if cp.ID == id {
			return cp, nil
		}
	}
	return Checkpoint{}, dErrors.Newf(dErrors.CodeNotFound, "checkpoint %q not found in %s catalog", id, c.CenterType)
}

// AreaOf returns the area containing the given checkpoint id.
func (c Catalog) AreaOf(id string) (Area, error) {
	i, ok := c.index[id]
	if !ok {
		return Area{}, dErrors.Newf(dErrors.CodeNotFound, "checkpoint %q not found in %s catalog", id, c.CenterType)
	}
	return c.Areas[i], nil
}

// Area returns the named area.
func (c Catalog) Area(name AreaName) (Area, error) {
	for _, a := range c.Areas {
		if a.Name == name {
			return a, nil
		}
	}
	return Area{}, dErrors.Newf(dErrors.CodeNotFound, "unknown area %q", name)
}
