package core

// StakeWeights computes W_stk for every answer in the snapshot, using only
// ACTIVE stakes (Open Question 3 pins ACTIVE as authoritative).
func StakeWeights(snap *Snapshot) map[string]float64 {
	out := make(map[string]float64, len(snap.Answers))

	sums := make(map[string]float64, len(snap.Answers))
	var total float64
	for _, a := range snap.Answers {
		s := snap.ActiveStakeSum(a.ID)
		sums[a.ID] = s
		total += s
	}
	if total == 0 {
		for _, a := range snap.Answers {
			out[a.ID] = 0
		}
		return out
	}
	for _, a := range snap.Answers {
		out[a.ID] = sums[a.ID] / total
	}
	return out
}
