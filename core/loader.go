package core

import (
	"context"
	"errors"
)

// Loader wraps a Store port with the Evidence Loader's preconditions
// (§4.1). Load(questionId) returns the materialized snapshot, or a
// classified RunError for NotFound / InsufficientEvidence.
type Loader struct {
	store Store
}

func NewLoader(store Store) *Loader {
	return &Loader{store: store}
}

// Load enforces that Question.Status is OPEN or DEBATING and that
// |answers| >= Question.MinAnswers before handing back the snapshot.
func (l *Loader) Load(ctx context.Context, questionID string) (*Snapshot, error) {
	snap, err := l.store.LoadSnapshot(ctx, questionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewRunError(KindValidation, err)
		}
		// A store failure other than "no such question" (connection
		// drop, deadlock, timeout) is a transient infra fault, not a bad
		// request; the Job Queue retries it (§7).
		return nil, NewRunError(KindTransient, err)
	}

	switch snap.Question.Status {
	case StatusOpen, StatusDebating:
	default:
		return nil, NewRunError(KindValidation, ErrNotFound)
	}

	if len(snap.Answers) < snap.Question.MinAnswers {
		return nil, NewRunError(KindValidation, &InsufficientEvidenceError{
			Have: len(snap.Answers),
			Need: snap.Question.MinAnswers,
		})
	}

	snap.Build()
	return snap, nil
}
