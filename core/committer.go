package core

import "context"

// Committer wraps a Store port with the Result Committer's write-set
// construction (§4.4). The actual atomicity guarantee (delete-then-insert
// ConsensusWeight, update Answers, conditional Question status, append
// ConsensusLog) is the Store implementation's responsibility; Committer's
// job is to build the WriteSet the invariants require.
type Committer struct {
	store Store
	clock Clock
}

func NewCommitter(store Store, clock Clock) *Committer {
	return &Committer{store: store, clock: clock}
}

// Commit builds and commits the WriteSet for a finalized run. newStatus is
// CONSENSUS when result.ConsensusReached, else the question's current
// status is preserved (status never regresses, Invariant 3).
func (c *Committer) Commit(ctx context.Context, snap *Snapshot, result AlgorithmResult, calculationTimeMs int64) error {
	weights := make([]ConsensusWeight, 0, len(result.Ranked))
	updates := make(map[string]AnswerUpdate, len(result.Ranked))
	for _, r := range result.Ranked {
		a := snap.AnswerByID(r.AnswerID)
		weights = append(weights, ConsensusWeight{
			QuestionID:  snap.Question.ID,
			AnswerID:    r.AnswerID,
			AgentID:     a.AgentID,
			FinalWeight: r.FinalWeight,
			Rank:        r.Rank,
		})
		updates[r.AnswerID] = AnswerUpdate{FinalWeight: r.FinalWeight, Rank: r.Rank}
	}

	newStatus := snap.Question.Status
	if result.ConsensusReached {
		newStatus = StatusConsensus
	}
	if newStatus.Regresses(snap.Question.Status) {
		return NewRunError(KindConflict, ErrStatusRegression)
	}

	log := ConsensusLog{
		ID:                "", // assigned by the Store adapter (uuid), kept opaque to core
		QuestionID:         snap.Question.ID,
		Algorithm:          result.Algorithm,
		ParticipantCount:   len(snap.Answers),
		ConfidenceLevel:    result.ConfidenceLevel,
		WinningAnswerID:    result.WinningAnswerID,
		ConsensusStrength:  result.ConsensusStrength,
		CalculationTimeMs:  calculationTimeMs,
		CreatedAt:          c.clock.Wall(),
	}

	ws := WriteSet{
		QuestionID:       snap.Question.ID,
		Weights:          weights,
		AnswerUpdates:    updates,
		NewStatus:        newStatus,
		ConsensusReached: result.ConsensusReached,
		Log:              log,
	}

	if err := c.store.CommitWriteSet(ctx, ws); err != nil {
		return NewRunError(KindTransient, err)
	}
	return nil
}
