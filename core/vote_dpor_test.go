package core_test

import (
	"testing"
	"time"

	. "swarmconsensus/core"
)

func TestVoteDPoRTruncatesToEligibleTop30Percent(t *testing.T) {
	// 10 answers -> eligibleCount = ceil(0.3*10) = 3. Only the top 3 by
	// W_rep may score; the remaining 7 must be zero regardless of their
	// own confidence/stake.
	answers := make([]Answer, 10)
	rep := make(map[string]float64, 10)
	for i := range answers {
		id := string(rune('a' + i))
		answers[i] = Answer{ID: id, AgentID: id, Confidence: 1, SubmittedAt: time.Unix(int64(i), 0)}
		rep[id] = float64(10 - i) // a has the highest reputation, j the lowest
	}
	snap := &Snapshot{Answers: answers}
	w := Weights{Reputation: rep, Stake: map[string]float64{}}

	result := VoteDPoR(snap, w)
	eligible := 0
	for _, a := range answers {
		if result[a.ID] > 0 {
			eligible++
		}
	}
	if eligible != 3 {
		t.Fatalf("eligible count = %d, want 3", eligible)
	}
	// top-reputation answer must be among the eligible (nonzero) set
	if result["a"] == 0 {
		t.Errorf("highest-reputation answer should be eligible, got 0")
	}
	if result["j"] != 0 {
		t.Errorf("lowest-reputation answer should be ineligible, got %v", result["j"])
	}
}

func TestVoteDPoREmptySnapshot(t *testing.T) {
	snap := &Snapshot{}
	result := VoteDPoR(snap, Weights{})
	if len(result) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
