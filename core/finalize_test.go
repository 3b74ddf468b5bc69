package core_test

import (
	"errors"
	"testing"
	"time"

	. "swarmconsensus/core"
)

func TestFinalizeDenseRankPermutation(t *testing.T) {
	snap := &Snapshot{Answers: []Answer{
		{ID: "a1", SubmittedAt: time.Unix(0, 0)},
		{ID: "a2", SubmittedAt: time.Unix(1, 0)},
		{ID: "a3", SubmittedAt: time.Unix(2, 0)},
	}}
	// a2 and a3 tie on weight; the tie must be broken (not merged) by
	// earliest submission, giving ranks 1,2,3 not 1,2,2.
	weights := map[string]float64{"a1": 0.9, "a2": 0.5, "a3": 0.5}
	result, err := Finalize(snap, AlgorithmHybrid, weights, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := make(map[int]bool)
	for _, r := range result.Ranked {
		if seen[r.Rank] {
			t.Fatalf("duplicate rank %d", r.Rank)
		}
		seen[r.Rank] = true
	}
	for rank := 1; rank <= 3; rank++ {
		if !seen[rank] {
			t.Fatalf("rank %d missing from dense permutation", rank)
		}
	}
	if result.Ranked[1].AnswerID != "a2" || result.Ranked[2].AnswerID != "a3" {
		t.Errorf("tie-break order wrong: got %+v", result.Ranked)
	}
}

func TestFinalizeWinningAnswerOnlyWhenReached(t *testing.T) {
	snap := &Snapshot{Answers: []Answer{
		{ID: "a1", SubmittedAt: time.Unix(0, 0)},
		{ID: "a2", SubmittedAt: time.Unix(1, 0)},
	}}
	weights := map[string]float64{"a1": 0.9, "a2": 0.1}

	below, err := Finalize(snap, AlgorithmHybrid, weights, 0.95)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if below.ConsensusReached || below.WinningAnswerID != nil {
		t.Errorf("threshold not met: expected no winner, got reached=%v winner=%v", below.ConsensusReached, below.WinningAnswerID)
	}

	above, err := Finalize(snap, AlgorithmHybrid, weights, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !above.ConsensusReached || above.WinningAnswerID == nil || *above.WinningAnswerID != "a1" {
		t.Errorf("threshold met: expected winner a1, got reached=%v winner=%v", above.ConsensusReached, above.WinningAnswerID)
	}
}

func TestFinalizeNoValidAnswers(t *testing.T) {
	snap := &Snapshot{Answers: []Answer{{ID: "a1"}, {ID: "a2"}}}
	weights := map[string]float64{"a1": 0, "a2": 0}
	_, err := Finalize(snap, AlgorithmHybrid, weights, 0.5)
	if !errors.Is(err, ErrNoValidAnswers) {
		t.Fatalf("expected ErrNoValidAnswers, got %v", err)
	}
	if Classify(err) != KindLogic {
		t.Errorf("expected KindLogic, got %v", Classify(err))
	}
}

func TestFinalizeSingleAnswerConfidenceIsOne(t *testing.T) {
	snap := &Snapshot{Answers: []Answer{{ID: "a1", SubmittedAt: time.Unix(0, 0)}}}
	result, err := Finalize(snap, AlgorithmHybrid, map[string]float64{"a1": 0.4}, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ConfidenceLevel != 1.0 {
		t.Errorf("confidenceLevel = %v, want 1.0 for a single answer", result.ConfidenceLevel)
	}
}
