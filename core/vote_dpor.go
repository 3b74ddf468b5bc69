package core

import (
	"math"
	"sort"
)

// VoteDPoR runs Delegated-Proof-of-Reputation (§4.3): only the top
// ceil(0.3 * |answers|) answers by W_rep[agent] are eligible; all others
// score 0.
func VoteDPoR(snap *Snapshot, w Weights) map[string]float64 {
	n := len(snap.Answers)
	result := make(map[string]float64, n)
	if n == 0 {
		return result
	}

	ordered := make([]Answer, n)
	copy(ordered, snap.Answers)
	sort.Slice(ordered, func(i, j int) bool {
		ri, rj := w.Reputation[ordered[i].AgentID], w.Reputation[ordered[j].AgentID]
		if ri != rj {
			return ri > rj
		}
		return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
	})

	eligibleCount := int(math.Ceil(0.3 * float64(n)))
	eligible := make(map[string]struct{}, eligibleCount)
	for i := 0; i < eligibleCount && i < n; i++ {
		eligible[ordered[i].ID] = struct{}{}
	}

	for _, a := range snap.Answers {
		if _, ok := eligible[a.ID]; !ok {
			result[a.ID] = 0
			continue
		}
		result[a.ID] = 0.6*w.Reputation[a.AgentID] + 0.3*w.Stake[a.ID] + 0.1*a.Confidence
	}
	return result
}
