package scoring

import "skillaudit/internal/catalog"

// Totals carries the aggregated outcome of one recompute pass.
type Totals struct {
	// Areas holds each area's summed score, keyed by area name. An
	// inapplicable placement area is absent from the map entirely; the
	// renderer reports it as "NA", never as 0.
	Areas map[catalog.AreaName]float64
	// Grand is the sum of the area totals, out of 100 by construction.
	Grand float64
}

// Aggregate sums checkpoint scores into area totals and the grand total,
// both rounded to 2 decimals.
func Aggregate(cat catalog.Catalog, scored []Scored) Totals {
	byID := make(map[string]float64, len(scored))
	for _, s := range scored {
		byID[s.CheckpointID] = s.Score
	}

	t := Totals{Areas: make(map[catalog.AreaName]float64, len(cat.Areas))}
	for _, area := range cat.Areas {
		if !area.Applicable {
			continue
		}
		sum := 0.0
		for _, cp := range area.Checkpoints {
			sum += byID[cp.ID]
		}
		t.Areas[area.Name] = Round2(sum)
		t.Grand += t.Areas[area.Name]
	}
	t.Grand = Round2(t.Grand)
	return t
}
