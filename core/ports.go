package core

import (
	"context"
	"time"
)

// WriteSet is the atomic write produced by a successful run, handed to the
// Store Port's commit call as a single unit (Result Committer, §4.4).
type WriteSet struct {
	QuestionID      string
	Weights         []ConsensusWeight
	AnswerUpdates   map[string]AnswerUpdate // answerId -> new finalWeight/rank
	NewStatus       QuestionStatus
	ConsensusReached bool
	Log             ConsensusLog
}

// AnswerUpdate is the per-answer mutation applied during commit.
type AnswerUpdate struct {
	FinalWeight float64
	Rank        int
}

// Store is the persistence port consumed by the Evidence Loader and Result
// Committer. A single implementation must provide read-consistent snapshot
// loads and all-or-nothing write-set commits (§6 Store Port).
type Store interface {
	// LoadSnapshot materializes a question's full evidence graph in one
	// read-consistent transaction. Returns ErrNotFound if questionId is
	// unknown.
	LoadSnapshot(ctx context.Context, questionID string) (*Snapshot, error)

	// CommitWriteSet atomically applies ws: delete-then-insert
	// ConsensusWeight rows, update Answer rows, conditionally advance
	// Question.Status, and append one ConsensusLog row. Returns
	// ErrStatusRegression if ws.NewStatus would regress the question's
	// current status; any failure leaves prior state untouched.
	CommitWriteSet(ctx context.Context, ws WriteSet) error
}

// Embedder is the external embedding capability consumed by the semantic
// weight calculator (§6 Embedding Port). Implementations may return fewer
// guarantees than Store: the engine treats both error and timeout as "use
// the fallback", never as a hard failure.
type Embedder interface {
	// Embed returns one fixed-dimension vector per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Bus is the cross-process publish/subscribe port (§6 Event Bus Port).
// Delivery is at-most-once and fire-and-forget; callers must not assume
// ordering across topics.
type Bus interface {
	Publish(ctx context.Context, topic string, envelope Envelope) error
	Subscribe(ctx context.Context, topic string, handler func(Envelope)) (unsubscribe func(), err error)
}

// Clock is the port used for calculation timing and createdAt stamping
// (§6 Clock Port), so tests can inject deterministic time.
type Clock interface {
	// Now returns a monotonic instant suitable for measuring elapsed
	// durations (calculationTimeMs).
	Now() time.Time
	// Wall returns wall-clock time suitable for createdAt fields.
	Wall() time.Time
}

// SystemClock is the production Clock backed by the runtime clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time  { return time.Now() }
func (SystemClock) Wall() time.Time { return time.Now() }
