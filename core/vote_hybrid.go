package core

// VoteHybrid runs the HYBRID algorithm (§4.3). Associativity of the debate
// multiplier is pinned by spec.md §9 Open Question 1 as
// base * (0.1*W_deb + 0.9), not (base*0.1*W_deb) + 0.9.
func VoteHybrid(snap *Snapshot, w Weights) map[string]float64 {
	result := make(map[string]float64, len(snap.Answers))
	for _, a := range snap.Answers {
		base := 0.2*a.Confidence + 0.3*w.Reputation[a.AgentID] + 0.2*w.Stake[a.ID] + 0.2*w.Semantic.AvgSim(a.ID)
		final := base * (0.1*w.Debate[a.ID] + 0.9)
		if final < 0 {
			final = 0
		}
		result[a.ID] = final
	}
	return result
}
