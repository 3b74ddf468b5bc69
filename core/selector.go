package core

// SelectAlgorithm applies the deterministic selection rule (§4.3). force,
// if non-empty, overrides the rule per a job's forceAlgorithm option.
func SelectAlgorithm(snap *Snapshot, force Algorithm) Algorithm {
	if force != "" {
		return force
	}
	n := len(snap.Answers)
	switch {
	case snap.Question.Category == CategoryFactual && n > 20:
		return AlgorithmBFT
	case snap.Question.Category == CategoryAnalytical && n <= 10:
		return AlgorithmDPoR
	default:
		return AlgorithmHybrid
	}
}
