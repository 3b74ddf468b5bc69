package core

import "context"

// ConsensusSummary is the joined read-only view returned by GetConsensus
// (§3 Supplemental read model): the latest ConsensusLog plus its ordered
// ConsensusWeight rows and a joined answer/agent summary.
type ConsensusSummary struct {
	Log     ConsensusLog
	Weights []ConsensusWeight
	Answers map[string]Answer // answerId -> Answer, for display joins
	Agents  map[string]Agent  // agentId -> Agent, for display joins
}

// RunProgress is the read-only view returned by GetStatus (§3).
type RunProgress struct {
	Calculation        string // "idle" | "queued" | "active" | "completed" | "failed"
	QuestionStatus     QuestionStatus
	AnswerCount        int
	ConsensusReachedAt *string
	HasConsensus       bool
	Progress           float64 // 0..1, advisory
}

// ConsensusReader is the read-model port backing GetConsensus/GetStatus
// (§6 exposed ports). A Store implementation may also implement this;
// it is kept separate from Store because it is a pure projection with no
// write-set semantics.
type ConsensusReader interface {
	GetConsensus(ctx context.Context, questionID string) (*ConsensusSummary, error)
	GetStatus(ctx context.Context, questionID string) (*RunProgress, error)
}
