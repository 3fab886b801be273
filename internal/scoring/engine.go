// Package scoring converts raw sample counts into checkpoint scores and
// area/grand totals. This is pure domain logic — no I/O, no side effects.
// The rules are centralized here so they stay testable in isolation.
package scoring

import (
	"math"

	"skillaudit/internal/catalog"
	dErrors "skillaudit/pkg/domain-errors"
)

// Binary checkpoints score zero unless every sample is compliant. DP2 is
// excluded despite superficial similarity; that exclusion is documented
// behavior, not an oversight.
var binaryCheckpoints = map[string]struct{}{
	"DP1": {},
	"DP3": {},
	"DP7": {},
}

// IsBinary reports whether the checkpoint only scores at 100% compliance.
func IsBinary(checkpointID string) bool {
	_, ok := binaryCheckpoints[checkpointID]
	return ok
}

// Input is one checkpoint's raw observation for an audit.
type Input struct {
	CheckpointID     string
	TotalSamples     int
	SamplesCompliant int
	Remarks          string
}

// Scored is an Input with its derived values.
type Scored struct {
	Input
	MaxScore float64
	Percent  float64
	Score    float64
}

// ComputeScore scores a single checkpoint observation against the active
// catalog.
//
// Rule order:
//  1. zero total samples scores 0 (division guard);
//  2. binary checkpoints gate at exactly 100% compliance;
//  3. slab multiplier by compliance percent: 1.00 at >=90, 0.75 at >=70,
//     0.50 at >=60, 0.25 at >=50, else 0;
//  4. score = maxScore * multiplier, rounded to 2 decimals.
//
// Cross-checkpoint propagation (DP1 -> DP3/DP7) is applied by Recompute,
// not here, so a single checkpoint stays a pure function of its own counts.
func ComputeScore(cat catalog.Catalog, in Input) (Scored, error) {
	cp, err := cat.Checkpoint(in.CheckpointID)
	if err != nil {
		return Scored{}, err
	}
	if err := validateCounts(in); err != nil {
		return Scored{}, err
	}

	out := Scored{Input: in, MaxScore: cp.MaxScore}
	if in.TotalSamples == 0 {
		return out, nil
	}

	out.Percent = Round2(float64(in.SamplesCompliant) / float64(in.TotalSamples) * 100)
	if IsBinary(in.CheckpointID) && in.SamplesCompliant != in.TotalSamples {
		return out, nil
	}

	out.Score = Round2(cp.MaxScore * slabMultiplier(out.Percent))
	return out, nil
}

// Recompute scores every observation from its own stored counts, then
// applies the one cross-checkpoint rule: a DP1 score of exactly zero,
// whatever its cause, forces DP3 and DP7 to zero. Invoked in full after any
// observation mutation, which removes order-of-update hazards.
func Recompute(cat catalog.Catalog, inputs []Input) ([]Scored, error) {
	scored := make([]Scored, len(inputs))
	dp1Zero := false
	for i, in := range inputs {
		s, err := ComputeScore(cat, in)
		if err != nil {
			return nil, err
		}
		scored[i] = s
		if in.CheckpointID == "DP1" && s.Score == 0 {
			dp1Zero = true
		}
	}
	if dp1Zero {
		for i := range scored {
			switch scored[i].CheckpointID {
			case "DP3", "DP7":
				scored[i].Score = 0
			}
		}
	}
	return scored, nil
}

func validateCounts(in Input) error {
	if in.TotalSamples < 0 || in.SamplesCompliant < 0 {
		return dErrors.Newf(dErrors.CodeValidation,
			"checkpoint %s: sample counts must be non-negative", in.CheckpointID)
	}
	if in.SamplesCompliant > in.TotalSamples {
		return dErrors.Newf(dErrors.CodeValidation,
			"checkpoint %s: compliant samples (%d) exceed total samples (%d)",
			in.CheckpointID, in.SamplesCompliant, in.TotalSamples)
	}
	return nil
}

func slabMultiplier(percent float64) float64 {
	switch {
	case percent >= 90:
		return 1.00
	case percent >= 70:
		return 0.75
	case percent >= 60:
		return 0.50
	case percent >= 50:
		return 0.25
	default:
		return 0
	}
}

// Round2 rounds to two decimal places, the precision used everywhere a
// score or total is stored or displayed.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
