package core

// DebateWeights computes W_deb for every answer in the snapshot by applying
// each critique's multiplicative penalty/bonus in createdAt ascending order
// (§4.2). Starting value is 1.0; final value is clamped to [0, +inf).
func DebateWeights(snap *Snapshot) map[string]float64 {
	out := make(map[string]float64, len(snap.Answers))
	for _, a := range snap.Answers {
		w := 1.0
		for _, c := range snap.CritiquesFor(a.ID) {
			w *= critiqueFactor(c)
		}
		if w < 0 {
			w = 0
		}
		out[a.ID] = w
	}
	return out
}

func critiqueFactor(c Critique) float64 {
	switch c.Type {
	case CritiqueFactualError:
		return 1 - 0.8*c.Impact
	case CritiqueLogicalFlaw:
		return 1 - 0.6*c.Impact
	case CritiqueMissingContext:
		return 1 - 0.3*c.Impact
	case CritiqueImprovement:
		return 1 + 0.2*c.Impact
	default:
		return 1
	}
}
