package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillaudit/internal/catalog"
	"skillaudit/internal/scoring"
)

func TestClassifyArea(t *testing.T) {
	cases := []struct {
		percent float64
		want    Status
	}{
		{100, StatusCompliant},
		{80, StatusCompliant},
		{79.99, StatusAmber},
		{65, StatusAmber},
		{64.99, StatusNonCompliant},
		{0, StatusNonCompliant},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyArea(tc.percent), "percent %.2f", tc.percent)
	}
}

func TestStatusColors(t *testing.T) {
	assert.Equal(t, "green", StatusCompliant.Color())
	assert.Equal(t, "yellow", StatusAmber.Color())
	assert.Equal(t, "red", StatusNonCompliant.Color())
}

// totalsFor builds a Totals whose areas land at the given percents of their
// ceilings on a placement-applicable CDC report (ceilings 30/40/15/15).
func totalsFor(t *testing.T, cat catalog.Catalog, percents map[catalog.AreaName]float64) scoring.Totals {
	t.Helper()
	totals := scoring.Totals{Areas: map[catalog.AreaName]float64{}}
	for _, area := range cat.Areas {
		if !area.Applicable {
			continue
		}
		totals.Areas[area.Name] = scoring.Round2(area.TotalScore * percents[area.Name] / 100)
		totals.Grand += totals.Areas[area.Name]
	}
	totals.Grand = scoring.Round2(totals.Grand)
	return totals
}

func TestOverallRuleOrdering(t *testing.T) {
	cat, err := catalog.Get(catalog.CenterCDC, true)
	require.NoError(t, err)

	cases := []struct {
		name     string
		percents map[catalog.AreaName]float64
		want     Status
	}{
		{
			"all green is Compliant",
			map[catalog.AreaName]float64{
				catalog.AreaFrontOffice: 100, catalog.AreaDeliveryProcess: 100,
				catalog.AreaPlacement: 100, catalog.AreaManagement: 100,
			},
			StatusCompliant,
		},
		{
			"single amber is still Compliant",
			map[catalog.AreaName]float64{
				catalog.AreaFrontOffice: 70, catalog.AreaDeliveryProcess: 100,
				catalog.AreaPlacement: 100, catalog.AreaManagement: 100,
			},
			StatusCompliant,
		},
		{
			"two ambers are Amber",
			map[catalog.AreaName]float64{
				catalog.AreaFrontOffice: 70, catalog.AreaDeliveryProcess: 70,
				catalog.AreaPlacement: 100, catalog.AreaManagement: 100,
			},
			StatusAmber,
		},
		{
			"three ambers are Non-Compliant",
			map[catalog.AreaName]float64{
				catalog.AreaFrontOffice: 70, catalog.AreaDeliveryProcess: 70,
				catalog.AreaPlacement: 70, catalog.AreaManagement: 100,
			},
			StatusNonCompliant,
		},
		{
			"four ambers are Non-Compliant",
			map[catalog.AreaName]float64{
				catalog.AreaFrontOffice: 70, catalog.AreaDeliveryProcess: 70,
				catalog.AreaPlacement: 70, catalog.AreaManagement: 70,
			},
			StatusNonCompliant,
		},
		{
			"one red outranks everything else",
			map[catalog.AreaName]float64{
				catalog.AreaFrontOffice: 100, catalog.AreaDeliveryProcess: 100,
				catalog.AreaPlacement: 100, catalog.AreaManagement: 40,
			},
			StatusNonCompliant,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := totalsFor(t, cat, tc.percents)
			v := Classify(cat, totals)
			assert.Equal(t, tc.want, v.Overall)
		})
	}
}

// A grand total at or above 80 is not enough on its own: one red area makes
// the whole audit Non-Compliant.
func TestRedAreaBeatsHighGrandTotal(t *testing.T) {
	cat, err := catalog.Get(catalog.CenterCDC, true)
	require.NoError(t, err)

	totals := totalsFor(t, cat, map[catalog.AreaName]float64{
		catalog.AreaFrontOffice: 100, catalog.AreaDeliveryProcess: 100,
		catalog.AreaPlacement: 100, catalog.AreaManagement: 40,
	})
	require.GreaterOrEqual(t, totals.Grand, 80.0)

	v := Classify(cat, totals)
	assert.Equal(t, StatusNonCompliant, v.Overall)
}

func TestInapplicablePlacementExcluded(t *testing.T) {
	cat, err := catalog.Get(catalog.CenterCDC, false)
	require.NoError(t, err)

	totals := totalsFor(t, cat, map[catalog.AreaName]float64{
		catalog.AreaFrontOffice: 100, catalog.AreaDeliveryProcess: 100,
		catalog.AreaManagement: 100,
	})
	v := Classify(cat, totals)
	assert.Equal(t, StatusCompliant, v.Overall)

	var pp AreaStatus
	for _, a := range v.Areas {
		if a.Area == catalog.AreaPlacement {
			pp = a
		}
	}
	assert.False(t, pp.Applicable)
	assert.Equal(t, "NA", pp.DisplayStatus(), "placement reads NA, not a zero score")

	t.Run("three participating areas still count reds first", func(t *testing.T) {
		totals := totalsFor(t, cat, map[catalog.AreaName]float64{
			catalog.AreaFrontOffice: 40, catalog.AreaDeliveryProcess: 100,
			catalog.AreaManagement: 100,
		})
		v := Classify(cat, totals)
		assert.Equal(t, StatusNonCompliant, v.Overall)
	})

	t.Run("two of three amber is Amber", func(t *testing.T) {
		totals := totalsFor(t, cat, map[catalog.AreaName]float64{
			catalog.AreaFrontOffice: 70, catalog.AreaDeliveryProcess: 70,
			catalog.AreaManagement: 100,
		})
		v := Classify(cat, totals)
		assert.Equal(t, StatusAmber, v.Overall)
	})
}

func TestPerAreaPercentUsesVariantCeilings(t *testing.T) {
	cat, err := catalog.Get(catalog.CenterCDC, false)
	require.NoError(t, err)

	// 28/35 = 80% exactly: Compliant on the redistributed ceiling, but it
	// would only be 93.33% of nothing meaningful against the default 30.
	totals := scoring.Totals{Areas: map[catalog.AreaName]float64{
		catalog.AreaFrontOffice:     28,
		catalog.AreaDeliveryProcess: 45,
		catalog.AreaManagement:      20,
	}, Grand: 93}

	v := Classify(cat, totals)
	for _, a := range v.Areas {
		if a.Area == catalog.AreaFrontOffice {
			assert.Equal(t, 80.0, a.Percent)
			assert.Equal(t, StatusCompliant, a.Status)
		}
	}
}
