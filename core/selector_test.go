package core_test

import (
	"testing"

	. "swarmconsensus/core"
)

func answersN(n int) []Answer {
	out := make([]Answer, n)
	for i := range out {
		out[i] = Answer{ID: string(rune('a' + i))}
	}
	return out
}

func TestSelectAlgorithmRule(t *testing.T) {
	cases := []struct {
		name     string
		category QuestionCategory
		n        int
		force    Algorithm
		want     Algorithm
	}{
		{"factual over 20 -> BFT", CategoryFactual, 21, "", AlgorithmBFT},
		{"factual at 20 -> hybrid (not strictly over)", CategoryFactual, 20, "", AlgorithmHybrid},
		{"analytical at or under 10 -> DPoR", CategoryAnalytical, 10, "", AlgorithmDPoR},
		{"analytical over 10 -> hybrid", CategoryAnalytical, 11, "", AlgorithmHybrid},
		{"creative -> hybrid", CategoryCreative, 3, "", AlgorithmHybrid},
		{"force overrides rule", CategoryFactual, 21, AlgorithmDPoR, AlgorithmDPoR},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			snap := &Snapshot{Question: Question{Category: c.category}, Answers: answersN(c.n)}
			if got := SelectAlgorithm(snap, c.force); got != c.want {
				t.Errorf("got %v, want %v", got, c.want)
			}
		})
	}
}
