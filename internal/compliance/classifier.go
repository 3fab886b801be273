// Package compliance converts area totals into per-area statuses and an
// overall verdict. Pure rule logic, ordered fail-fast like a rule chain —
// no I/O, no side effects.
package compliance

import (
	"skillaudit/internal/catalog"
	"skillaudit/internal/scoring"
)

// Status is the classification contract consumed by renderers and
// notifications. The strings and color mapping are fixed.
type Status string

const (
	StatusCompliant    Status = "Compliant"
	StatusAmber        Status = "Amber"
	StatusNonCompliant Status = "Non-Compliant"
)

// Color returns the fixed display color for a status.
func (s Status) Color() string {
	switch s {
	case StatusCompliant:
		return "green"
	case StatusAmber:
		return "yellow"
	default:
		return "red"
	}
}

// AreaStatus is one area's classification. An inapplicable area (placement
// on a no-placement report) has Applicable=false and is excluded from the
// overall counting rules; its display form is "NA".
type AreaStatus struct {
	Area    catalog.AreaName
	Total   float64
	Ceiling float64
	Percent float64
	Status  Status

	Applicable bool
}

// DisplayStatus is what user-facing surfaces print for the area.
func (a AreaStatus) DisplayStatus() string {
	if !a.Applicable {
		return "NA"
	}
	return string(a.Status)
}

// Verdict is the full classification of one audit.
type Verdict struct {
	Areas   [4]AreaStatus
	Overall Status
}

// ClassifyArea maps a percent-of-ceiling onto the per-area bands:
// >=80 Compliant, >=65 Amber, below Non-Compliant.
func ClassifyArea(percent float64) Status {
	switch {
	case percent >= 80:
		return StatusCompliant
	case percent >= 65:
		return StatusAmber
	default:
		return StatusNonCompliant
	}
}

// Classify produces per-area statuses and the overall verdict.
//
// The overall rules count participating areas (3 or 4, depending on
// placement applicability) into red/amber buckets and apply, in this exact
// priority order:
//
//	any red            => Non-Compliant
//	amber count >= 3   => Non-Compliant
//	amber count == 2   => Amber
//	all green          => Compliant
//	amber count == 1   => Compliant
//	otherwise          => Amber (unreachable fallback)
//
// The ordering matters: a grand total of 80+ can still be Non-Compliant
// when a single area is red, so this is deliberately not an average.
func Classify(cat catalog.Catalog, totals scoring.Totals) Verdict {
	var v Verdict
	red, amber, participating := 0, 0, 0

	for i, area := range cat.Areas {
		st := AreaStatus{
			Area:       area.Name,
			Ceiling:    area.TotalScore,
			Applicable: area.Applicable,
		}
		if !area.Applicable {
			v.Areas[i] = st
			continue
		}

		st.Total = totals.Areas[area.Name]
		if area.TotalScore > 0 {
			st.Percent = scoring.Round2(st.Total / area.TotalScore * 100)
		}
		st.Status = ClassifyArea(st.Percent)
		v.Areas[i] = st

		participating++
		switch st.Status {
		case StatusNonCompliant:
			red++
		case StatusAmber:
			amber++
		}
	}

	v.Overall = overall(red, amber, participating)
	return v
}

func overall(red, amber, participating int) Status {
	green := participating - red - amber
	switch {
	case red > 0:
		return StatusNonCompliant
	case amber >= 3:
		return StatusNonCompliant
	case amber == 2:
		return StatusAmber
	case green == participating:
		return StatusCompliant
	case amber == 1:
		return StatusCompliant
	default:
		return StatusAmber
	}
}
