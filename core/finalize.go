package core

import "sort"

// AlgorithmResult is the common finalization of a voter's raw finalWeight
// map into dense ranks and the summary metrics used by ConsensusLog
// (§4.3 Finalization).
type AlgorithmResult struct {
	Algorithm         Algorithm
	Ranked            []RankedAnswer
	ConsensusStrength float64
	ConfidenceLevel   float64
	ConsensusReached  bool
	WinningAnswerID   *string
}

// RankedAnswer is one answer's position in the finalized outcome.
type RankedAnswer struct {
	AnswerID    string
	FinalWeight float64
	Rank        int
}

// Finalize sorts answers by finalWeight descending (ties by earliest
// submission then by answer id), assigns dense 1-based ranks, and computes
// consensusStrength/confidenceLevel/consensusReached. Returns
// ErrNoValidAnswers if no answer scored above 0.
func Finalize(snap *Snapshot, algo Algorithm, finalWeights map[string]float64, threshold float64) (AlgorithmResult, error) {
	n := len(snap.Answers)
	ordered := make([]Answer, n)
	copy(ordered, snap.Answers)

	anyPositive := false
	for _, w := range finalWeights {
		if w > 0 {
			anyPositive = true
			break
		}
	}
	if !anyPositive {
		return AlgorithmResult{}, NewRunError(KindLogic, ErrNoValidAnswers)
	}

	sort.Slice(ordered, func(i, j int) bool {
		wi, wj := finalWeights[ordered[i].ID], finalWeights[ordered[j].ID]
		if wi != wj {
			return wi > wj
		}
		if !ordered[i].SubmittedAt.Equal(ordered[j].SubmittedAt) {
			return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	ranked := make([]RankedAnswer, n)
	var sum float64
	for _, w := range finalWeights {
		sum += w
	}

	// rank is a dense 1-based permutation (Invariant 1): ties are broken,
	// not merged, by the sort above (earliest submission then answer id),
	// so sorted position alone gives the rank.
	for i, a := range ordered {
		ranked[i] = RankedAnswer{AnswerID: a.ID, FinalWeight: finalWeights[a.ID], Rank: i + 1}
	}

	topWeight := ranked[0].FinalWeight
	var consensusStrength float64
	if sum > 0 {
		consensusStrength = topWeight / sum
	}

	confidenceLevel := 1.0
	if n >= 2 && topWeight > 0 {
		confidenceLevel = (topWeight - ranked[1].FinalWeight) / topWeight
	}

	consensusReached := consensusStrength >= threshold

	var winningID *string
	if consensusReached {
		id := ranked[0].AnswerID
		winningID = &id
	}

	return AlgorithmResult{
		Algorithm:         algo,
		Ranked:            ranked,
		ConsensusStrength: consensusStrength,
		ConfidenceLevel:   confidenceLevel,
		ConsensusReached:  consensusReached,
		WinningAnswerID:   winningID,
	}, nil
}
