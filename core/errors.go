package core

import (
	"errors"
	"fmt"
)

// Kind classifies a consensus-run failure for the Job Queue's retry policy
// and for the stable, opaque reason strings surfaced on consensus:failed
// events. See the error taxonomy table in SPEC_FULL.md §7.
type Kind int

const (
	// KindUnknown is never returned by Classify for an error produced by
	// this package; it exists so the zero value is distinguishable.
	KindUnknown Kind = iota
	KindValidation
	KindTransient
	KindDependencyDegraded
	KindLogic
	KindConflict
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransient:
		return "transient"
	case KindDependencyDegraded:
		return "dependency_degraded"
	case KindLogic:
		return "logic"
	case KindConflict:
		return "conflict"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Retryable reports whether the Job Queue should re-enqueue a job that
// failed with this kind, per the taxonomy table.
func (k Kind) Retryable() bool {
	return k == KindTransient
}

// RunError wraps an underlying cause with a Kind so callers can classify it
// without string matching. The underlying cause is preserved for logging
// but the reason string surfaced to subscribers is the Kind alone (the
// "opaque but stable per kind" requirement).
type RunError struct {
	Kind  Kind
	Cause error
}

func (e *RunError) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind.String(), e.Cause)
}

func (e *RunError) Unwrap() error { return e.Cause }

// NewRunError builds a RunError, wrapping cause with utils.Wrap-style
// context so %w chains still resolve with errors.Is/As.
func NewRunError(kind Kind, cause error) *RunError {
	return &RunError{Kind: kind, Cause: cause}
}

// Classify extracts the Kind from err, defaulting to KindLogic for any
// error that did not originate as a RunError (an unclassified failure is
// treated as non-retried, matching the "Logic" row's conservative default).
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindLogic
}

// Sentinel causes wrapped by RunError at the call sites that detect them.
var (
	// ErrNotFound is returned by a Store when a question id is unknown.
	ErrNotFound = errors.New("resource not found")
	// ErrInsufficientEvidence is returned by the Evidence Loader when a
	// question has fewer answers than Question.MinAnswers.
	ErrInsufficientEvidence = errors.New("insufficient evidence")
	// ErrNoValidAnswers is returned by Finalize when no answer's final
	// weight from the voter is above zero.
	ErrNoValidAnswers = errors.New("no valid answers")
	// ErrStatusRegression is returned by the committer when a commit would
	// move Question.Status backwards.
	ErrStatusRegression = errors.New("status regression attempted")
	// ErrCancelled is returned when a job's cancellation token fires.
	ErrCancelled = errors.New("cancelled")
)

// InsufficientEvidenceError carries the have/need counts for
// ErrInsufficientEvidence, per the Evidence Loader contract.
type InsufficientEvidenceError struct {
	Have, Need int
}

func (e *InsufficientEvidenceError) Error() string {
	return fmt.Sprintf("insufficient evidence: have %d, need %d", e.Have, e.Need)
}

func (e *InsufficientEvidenceError) Unwrap() error { return ErrInsufficientEvidence }
