package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillaudit/internal/catalog"
	dErrors "skillaudit/pkg/domain-errors"
)

func cdcCatalog(t *testing.T) catalog.Catalog {
	t.Helper()
	c, err := catalog.Get(catalog.CenterCDC, true)
	require.NoError(t, err)
	return c
}

func TestSlabScoring(t *testing.T) {
	cat := cdcCatalog(t)

	// FO1 carries a max score of 9 in the CDC catalog.
	cases := []struct {
		name      string
		total     int
		compliant int
		want      float64
	}{
		{"full marks at 90 percent", 10, 9, 9.00},
		{"full marks at 100 percent", 10, 10, 9.00},
		{"three quarters at 70 percent", 10, 7, 6.75},
		{"three quarters just under 90", 100, 89, 6.75},
		{"half at 60 percent", 10, 6, 4.50},
		{"quarter at 50 percent", 10, 5, 2.25},
		{"zero under 50 percent", 10, 4, 0},
		{"zero samples scores zero", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := ComputeScore(cat, Input{CheckpointID: "FO1", TotalSamples: tc.total, SamplesCompliant: tc.compliant})
			require.NoError(t, err)
			assert.Equal(t, tc.want, s.Score)
		})
	}
}

func TestScoreRoundsToTwoDecimals(t *testing.T) {
	cat := cdcCatalog(t)

	// FO4 max 5; 75% band gives 3.75; 7/9 is 77.78% -> same band.
	s, err := ComputeScore(cat, Input{CheckpointID: "FO4", TotalSamples: 9, SamplesCompliant: 7})
	require.NoError(t, err)
	assert.Equal(t, 77.78, s.Percent)
	assert.Equal(t, 3.75, s.Score)
}

// Non-binary checkpoints must score monotonically in compliant/total.
func TestNonBinaryMonotonicity(t *testing.T) {
	cat := cdcCatalog(t)

	for _, id := range []string{"FO1", "DP2", "DP4", "PP1", "MP1"} {
		prev := -1.0
		for compliant := 0; compliant <= 20; compliant++ {
			s, err := ComputeScore(cat, Input{CheckpointID: id, TotalSamples: 20, SamplesCompliant: compliant})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, s.Score, prev, "%s at %d/20", id, compliant)
			prev = s.Score
		}
	}
}

func TestBinaryCheckpointsGateAtFullCompliance(t *testing.T) {
	cat := cdcCatalog(t)

	for _, id := range []string{"DP1", "DP3", "DP7"} {
		t.Run(id, func(t *testing.T) {
			// 90% would earn the full slab on any other checkpoint.
			s, err := ComputeScore(cat, Input{CheckpointID: id, TotalSamples: 10, SamplesCompliant: 9})
			require.NoError(t, err)
			assert.Equal(t, 0.0, s.Score, "below 100 percent must score zero")

			s, err = ComputeScore(cat, Input{CheckpointID: id, TotalSamples: 10, SamplesCompliant: 10})
			require.NoError(t, err)
			assert.Equal(t, 6.0, s.Score, "exactly 100 percent falls through to slab scoring")
		})
	}
}

// DP2 looks like the binary trio but is deliberately excluded.
func TestDP2IsNotBinary(t *testing.T) {
	cat := cdcCatalog(t)

	assert.False(t, IsBinary("DP2"))
	s, err := ComputeScore(cat, Input{CheckpointID: "DP2", TotalSamples: 10, SamplesCompliant: 9})
	require.NoError(t, err)
	assert.Equal(t, 6.0, s.Score)
}

func TestRecomputePropagatesDP1Zero(t *testing.T) {
	cat := cdcCatalog(t)

	t.Run("DP1 binary failure zeroes DP3 and DP7", func(t *testing.T) {
		scored, err := Recompute(cat, []Input{
			{CheckpointID: "DP1", TotalSamples: 10, SamplesCompliant: 9},  // fails the 100% gate
			{CheckpointID: "DP3", TotalSamples: 10, SamplesCompliant: 10}, // perfect on its own
			{CheckpointID: "DP7", TotalSamples: 5, SamplesCompliant: 5},
			{CheckpointID: "DP2", TotalSamples: 10, SamplesCompliant: 10},
		})
		require.NoError(t, err)

		byID := map[string]float64{}
		for _, s := range scored {
			byID[s.CheckpointID] = s.Score
		}
		assert.Equal(t, 0.0, byID["DP1"])
		assert.Equal(t, 0.0, byID["DP3"], "propagated despite its own 100 percent")
		assert.Equal(t, 0.0, byID["DP7"], "propagated despite its own 100 percent")
		assert.Equal(t, 6.0, byID["DP2"], "DP2 is unaffected by DP1")
	})

	t.Run("DP1 zero samples also propagates", func(t *testing.T) {
		scored, err := Recompute(cat, []Input{
			{CheckpointID: "DP1"},
			{CheckpointID: "DP3", TotalSamples: 4, SamplesCompliant: 4},
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, scored[1].Score)
	})

	t.Run("recovery when DP1 inputs change", func(t *testing.T) {
		scored, err := Recompute(cat, []Input{
			{CheckpointID: "DP1", TotalSamples: 10, SamplesCompliant: 10},
			{CheckpointID: "DP3", TotalSamples: 10, SamplesCompliant: 10},
			{CheckpointID: "DP7", TotalSamples: 10, SamplesCompliant: 10},
		})
		require.NoError(t, err)
		for _, s := range scored {
			assert.Equal(t, 6.0, s.Score, s.CheckpointID)
		}
	})

	t.Run("order of observations does not matter", func(t *testing.T) {
		scored, err := Recompute(cat, []Input{
			{CheckpointID: "DP7", TotalSamples: 10, SamplesCompliant: 10},
			{CheckpointID: "DP1", TotalSamples: 10, SamplesCompliant: 8},
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, scored[0].Score)
	})
}

func TestComputeScoreValidation(t *testing.T) {
	cat := cdcCatalog(t)

	t.Run("rejects unknown checkpoint loudly", func(t *testing.T) {
		_, err := ComputeScore(cat, Input{CheckpointID: "XX1", TotalSamples: 10, SamplesCompliant: 10})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("rejects compliant above total", func(t *testing.T) {
		_, err := ComputeScore(cat, Input{CheckpointID: "FO1", TotalSamples: 5, SamplesCompliant: 6})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		_, err := ComputeScore(cat, Input{CheckpointID: "FO1", TotalSamples: -1, SamplesCompliant: 0})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestAggregate(t *testing.T) {
	cat := cdcCatalog(t)

	fullMarks := func(c catalog.Catalog) []Input {
		var ins []Input
		for _, area := range c.Areas {
			for _, cp := range area.Checkpoints {
				ins = append(ins, Input{CheckpointID: cp.ID, TotalSamples: 10, SamplesCompliant: 10})
			}
		}
		return ins
	}

	t.Run("perfect audit reaches exactly 100", func(t *testing.T) {
		scored, err := Recompute(cat, fullMarks(cat))
		require.NoError(t, err)
		totals := Aggregate(cat, scored)
		assert.Equal(t, 100.0, totals.Grand)
		assert.Equal(t, 30.0, totals.Areas[catalog.AreaFrontOffice])
		assert.Equal(t, 40.0, totals.Areas[catalog.AreaDeliveryProcess])
		assert.Equal(t, 15.0, totals.Areas[catalog.AreaPlacement])
		assert.Equal(t, 15.0, totals.Areas[catalog.AreaManagement])
	})

	t.Run("area totals never exceed ceilings", func(t *testing.T) {
		scored, err := Recompute(cat, fullMarks(cat))
		require.NoError(t, err)
		totals := Aggregate(cat, scored)
		for _, area := range cat.Areas {
			assert.LessOrEqual(t, totals.Areas[area.Name], area.TotalScore)
		}
	})

	t.Run("inapplicable placement is absent, not zero", func(t *testing.T) {
		noPP, err := catalog.Get(catalog.CenterCDC, false)
		require.NoError(t, err)
		scored, err := Recompute(noPP, fullMarks(noPP))
		require.NoError(t, err)
		totals := Aggregate(noPP, scored)

		_, present := totals.Areas[catalog.AreaPlacement]
		assert.False(t, present)
		assert.Equal(t, 100.0, totals.Grand, "redistributed ceilings 35/45/20 still sum to 100")
	})

	t.Run("missing observations count as zero within their area", func(t *testing.T) {
		scored, err := Recompute(cat, []Input{
			{CheckpointID: "FO1", TotalSamples: 10, SamplesCompliant: 10},
		})
		require.NoError(t, err)
		totals := Aggregate(cat, scored)
		assert.Equal(t, 9.0, totals.Areas[catalog.AreaFrontOffice])
		assert.Equal(t, 9.0, totals.Grand)
	})
}
