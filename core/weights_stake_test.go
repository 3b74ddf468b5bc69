package core_test

import (
	"testing"

	. "swarmconsensus/core"
)

func TestStakeWeightsIgnoresNonActive(t *testing.T) {
	snap := &Snapshot{
		Answers: []Answer{{ID: "a1"}, {ID: "a2"}},
		Stakes: map[string][]Stake{
			"a1": {{AnswerID: "a1", Amount: 100, Status: StakeActive}},
			"a2": {{AnswerID: "a2", Amount: 9999, Status: StakeLost}},
		},
	}
	w := StakeWeights(snap)
	if w["a1"] != 1.0 {
		t.Errorf("a1 weight = %v, want 1.0 (sole active stake)", w["a1"])
	}
	if w["a2"] != 0 {
		t.Errorf("a2 weight = %v, want 0 (no active stake)", w["a2"])
	}
}

func TestStakeWeightsAllZeroWhenNoStakes(t *testing.T) {
	snap := &Snapshot{Answers: []Answer{{ID: "a1"}, {ID: "a2"}}}
	w := StakeWeights(snap)
	if w["a1"] != 0 || w["a2"] != 0 {
		t.Errorf("expected all-zero weights, got %+v", w)
	}
}
