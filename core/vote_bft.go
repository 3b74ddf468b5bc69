package core

// VoteBFT runs the reputation-weighted agreement heuristic (§4.3). Not a
// Byzantine fault-tolerant protocol (§1 Non-goals): it is a corroboration
// filter that zeroes answers lacking high-reputation agreeing peers.
//
// Three identical stability passes are run; they do not feed back into one
// another (spec.md §9 Open Question 2 notes the rounds are therefore
// redundant but preserves them literally). The last pass's result is used.
//
// support is peers agreeing with a / (|answers| - 1): the denominator
// excludes a itself, since a cannot be its own peer (§8 scenario 2 pins
// 14 agreeing peers out of 20 others, 14/20 = 0.7, to a surviving
// supermajority; peers/|answers| would instead put that case at 14/21,
// just under the 2/3 threshold and wrongly collapse the cluster).
func VoteBFT(snap *Snapshot, w Weights) map[string]float64 {
	n := len(snap.Answers)
	result := make(map[string]float64, n)
	if n == 0 {
		return result
	}

	for pass := 0; pass < 3; pass++ {
		for _, a := range snap.Answers {
			var accumWeight float64
			var peers int
			for _, b := range snap.Answers {
				if b.ID == a.ID {
					continue
				}
				sim := w.Semantic.SimTo(a.ID, b.ID)
				if sim > 0.7 {
					peers++
					accumWeight += sim * w.Reputation[b.AgentID]
				}
			}
			var support float64
			if n > 1 {
				support = float64(peers) / float64(n-1)
			}
			if support > 2.0/3.0 {
				result[a.ID] = accumWeight
			} else {
				result[a.ID] = 0
			}
		}
	}
	return result
}
