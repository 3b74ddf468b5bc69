package core_test

import (
	"testing"
	"time"

	. "swarmconsensus/core"
)

func TestVoteBFTSupermajorityCorroboration(t *testing.T) {
	// Four answers that all mutually agree above the 0.7 similarity bar:
	// each has 3 corroborating peers out of the other 3 answers, support =
	// 3/3 = 1.0 > 2/3, so every answer scores above zero.
	snap := &Snapshot{
		Answers: []Answer{
			{ID: "a1", AgentID: "ag1", SubmittedAt: time.Unix(0, 0)},
			{ID: "a2", AgentID: "ag2", SubmittedAt: time.Unix(1, 0)},
			{ID: "a3", AgentID: "ag3", SubmittedAt: time.Unix(2, 0)},
			{ID: "a4", AgentID: "ag4", SubmittedAt: time.Unix(3, 0)},
		},
	}
	agree := func(others ...string) []SimPair {
		var row []SimPair
		for _, o := range others {
			row = append(row, SimPair{OtherID: o, Sim: 0.9})
		}
		return row
	}
	w := Weights{
		Reputation: map[string]float64{"ag1": 1, "ag2": 1, "ag3": 1, "ag4": 1},
		Semantic: SemScores{Pairs: map[string][]SimPair{
			"a1": agree("a2", "a3", "a4"),
			"a2": agree("a1", "a3", "a4"),
			"a3": agree("a1", "a2", "a4"),
			"a4": agree("a1", "a2", "a3"),
		}},
	}
	result := VoteBFT(snap, w)
	for id, v := range result {
		if v == 0 {
			t.Errorf("%s = 0, want > 0 (full mutual corroboration)", id)
		}
	}
}

func TestVoteBFTZeroesBelowSupermajority(t *testing.T) {
	// A sole answer has no other answers to agree with: support is 0,
	// never above 2/3.
	snap := &Snapshot{Answers: []Answer{{ID: "a1", AgentID: "ag1"}}}
	w := Weights{Reputation: map[string]float64{"ag1": 1}, Semantic: SemScores{Pairs: map[string][]SimPair{}}}
	result := VoteBFT(snap, w)
	if result["a1"] != 0 {
		t.Errorf("a1 = %v, want 0 (no peers, support below threshold)", result["a1"])
	}
}

func TestVoteBFTSurvivesAtSpecPinnedRatio(t *testing.T) {
	// 21 answers total: a 15-member cluster that all mutually agree (14
	// peers each out of the 20 others), plus 6 outliers agreeing with no
	// one. support = 14/20 = 0.7 > 2/3, pinning peers/(|answers|-1) as the
	// denominator a cluster this size survives on (peers/|answers| would
	// instead give 14/21, just under 2/3, and wrongly zero it out).
	const clusterSize = 15
	const outlierCount = 6
	var answers []Answer
	reputation := map[string]float64{}
	pairs := map[string][]SimPair{}

	var clusterIDs []string
	for i := 0; i < clusterSize; i++ {
		id := "c" + string(rune('a'+i))
		clusterIDs = append(clusterIDs, id)
	}
	for i, id := range clusterIDs {
		agent := "ag-" + id
		answers = append(answers, Answer{ID: id, AgentID: agent, SubmittedAt: time.Unix(int64(i), 0)})
		reputation[agent] = 1
		var row []SimPair
		for _, other := range clusterIDs {
			if other == id {
				continue
			}
			row = append(row, SimPair{OtherID: other, Sim: 0.9})
		}
		pairs[id] = row
	}
	for i := 0; i < outlierCount; i++ {
		id := "o" + string(rune('a'+i))
		agent := "ag-" + id
		answers = append(answers, Answer{ID: id, AgentID: agent, SubmittedAt: time.Unix(int64(clusterSize+i), 0)})
		reputation[agent] = 1
		pairs[id] = nil
	}

	snap := &Snapshot{Answers: answers}
	w := Weights{Reputation: reputation, Semantic: SemScores{Pairs: pairs}}
	result := VoteBFT(snap, w)

	for _, id := range clusterIDs {
		if result[id] == 0 {
			t.Errorf("cluster member %s = 0, want > 0 (support 14/20 = 0.7 > 2/3)", id)
		}
	}
	for i := 0; i < outlierCount; i++ {
		id := "o" + string(rune('a'+i))
		if result[id] != 0 {
			t.Errorf("outlier %s = %v, want 0 (no agreeing peers)", id, result[id])
		}
	}
}

func TestVoteBFTEmptySnapshot(t *testing.T) {
	snap := &Snapshot{}
	result := VoteBFT(snap, Weights{})
	if len(result) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
