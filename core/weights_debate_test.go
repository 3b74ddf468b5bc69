package core_test

import (
	"testing"
	"time"

	. "swarmconsensus/core"
)

func TestDebateWeightsZeroImpactImprovementIsNoop(t *testing.T) {
	snap := &Snapshot{
		Answers: []Answer{{ID: "a1"}},
		Rounds:  []DebateRound{{ID: "r1"}},
		Critiques: map[string][]Critique{
			"r1": {{TargetAnswerID: "a1", Type: CritiqueImprovement, Impact: 0, CreatedAt: time.Unix(0, 0)}},
		},
	}
	w := DebateWeights(snap)
	if w["a1"] != 1.0 {
		t.Errorf("w_deb = %v, want 1.0 (zero-impact critique is a no-op)", w["a1"])
	}
}

func TestDebateWeightsClampsAtZero(t *testing.T) {
	base := time.Unix(1000, 0)
	// An impact of 1.5 gives a factor of 1 - 0.8*1.5 = -0.2, so the product
	// -0.2 * 0.2 * 0.2 = -0.008 is negative before the clamp.
	snap := &Snapshot{
		Answers: []Answer{{ID: "a1"}},
		Rounds:  []DebateRound{{ID: "r1"}},
		Critiques: map[string][]Critique{
			"r1": {
				{TargetAnswerID: "a1", Type: CritiqueFactualError, Impact: 1.5, CreatedAt: base},
				{TargetAnswerID: "a1", Type: CritiqueFactualError, Impact: 1.0, CreatedAt: base.Add(time.Second)},
				{TargetAnswerID: "a1", Type: CritiqueFactualError, Impact: 1.0, CreatedAt: base.Add(2 * time.Second)},
			},
		},
	}
	w := DebateWeights(snap)
	if w["a1"] < 0 {
		t.Errorf("w_deb = %v, want clamped to >= 0", w["a1"])
	}
}

func TestDebateWeightsAppliedInCreatedAtOrder(t *testing.T) {
	base := time.Unix(2000, 0)
	// Out-of-order insertion; CritiquesFor must sort by CreatedAt before
	// DebateWeights folds the multipliers, so the result must not depend
	// on slice insertion order.
	snap := &Snapshot{
		Answers: []Answer{{ID: "a1"}},
		Rounds:  []DebateRound{{ID: "r1"}},
		Critiques: map[string][]Critique{
			"r1": {
				{TargetAnswerID: "a1", Type: CritiqueImprovement, Impact: 0.5, CreatedAt: base.Add(time.Second)},
				{TargetAnswerID: "a1", Type: CritiqueLogicalFlaw, Impact: 0.5, CreatedAt: base},
			},
		},
	}
	w := DebateWeights(snap)
	want := (1 - 0.6*0.5) * (1 + 0.2*0.5)
	if diff := w["a1"] - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("w_deb = %v, want %v", w["a1"], want)
	}
}
