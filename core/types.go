package core

import "time"

// QuestionCategory is one of the five categories a Question may carry; the
// Algorithm Selector (selector.go) branches on it.
type QuestionCategory string

const (
	CategoryFactual     QuestionCategory = "FACTUAL"
	CategoryPredictive  QuestionCategory = "PREDICTIVE"
	CategoryAnalytical  QuestionCategory = "ANALYTICAL"
	CategoryTechnical   QuestionCategory = "TECHNICAL"
	CategoryCreative    QuestionCategory = "CREATIVE"
)

// QuestionStatus is the lifecycle state of a Question. Transitions are
// monotonic: OPEN -> DEBATING -> CONSENSUS -> VERIFIED, with CLOSED
// reachable from any non-terminal state (see Invariant 3).
type QuestionStatus string

const (
	StatusOpen       QuestionStatus = "OPEN"
	StatusDebating   QuestionStatus = "DEBATING"
	StatusConsensus  QuestionStatus = "CONSENSUS"
	StatusVerified   QuestionStatus = "VERIFIED"
	StatusClosed     QuestionStatus = "CLOSED"
)

// statusRank gives the monotonic ordering used to detect a regression at
// commit time. CLOSED is terminal but reachable from anywhere, so it is
// not part of the linear ordering; callers special-case it.
var statusRank = map[QuestionStatus]int{
	StatusOpen:      0,
	StatusDebating:  1,
	StatusConsensus: 2,
	StatusVerified:  3,
}

// Regresses reports whether moving from 'from' to 'to' would violate
// Invariant 3's monotonic ordering. Moving to CLOSED never regresses;
// moving away from CLOSED always does.
func (to QuestionStatus) Regresses(from QuestionStatus) bool {
	if to == StatusClosed {
		return false
	}
	if from == StatusClosed {
		return true
	}
	fr, ok1 := statusRank[from]
	tr, ok2 := statusRank[to]
	if !ok1 || !ok2 {
		return false
	}
	return tr < fr
}

// StakeStatus is the lifecycle of a Stake placed on an Answer.
type StakeStatus string

const (
	StakeActive StakeStatus = "ACTIVE"
	StakeWon    StakeStatus = "WON"
	StakeLost   StakeStatus = "LOST"
)

// CritiqueType classifies a Critique and determines which multiplicative
// penalty/bonus W_deb applies (weights_debate.go).
type CritiqueType string

const (
	CritiqueFactualError   CritiqueType = "FACTUAL_ERROR"
	CritiqueLogicalFlaw    CritiqueType = "LOGICAL_FLAW"
	CritiqueMissingContext CritiqueType = "MISSING_CONTEXT"
	CritiqueImprovement    CritiqueType = "IMPROVEMENT"
)

// Question is the subject of a consensus run.
type Question struct {
	ID                 string
	Category           QuestionCategory
	Status             QuestionStatus
	MinAnswers         int
	ConsensusThreshold float64 // in [0,1]
	OpenUntil          *time.Time
	ConsensusReachedAt *time.Time
}

// Agent is an autonomous scoring agent authoring Answers.
type Agent struct {
	ID              string
	ReputationScore float64
	AccuracyRate    float64 // in [0,1]
	TotalAnswers    int
	Capabilities    map[string]struct{}
}

// Answer is one agent's answer to a Question. Unique on (QuestionID, AgentID).
type Answer struct {
	ID             string
	QuestionID     string
	AgentID        string
	Content        string
	Reasoning      string
	Confidence     float64 // in [0,1]
	SubmittedAt    time.Time
	FinalWeight    *float64
	ConsensusRank  *int
}

// Stake is an amount an agent has put behind an Answer.
type Stake struct {
	ID       string
	AnswerID string
	AgentID  string
	Amount   float64
	Status   StakeStatus
}

// DebateRound groups Critiques exchanged over a Question.
type DebateRound struct {
	ID          string
	QuestionID  string
	RoundNumber int
	StartedAt   time.Time
	EndedAt     *time.Time
}

// Critique is a criticism of a TargetAnswerID raised during a DebateRound.
// An agent may not critique its own answer (enforced upstream of the
// engine, at the out-of-scope CRUD surface; the engine trusts the
// snapshot it is handed).
type Critique struct {
	ID             string
	DebateRoundID  string
	CriticAgentID  string
	TargetAnswerID string
	Type           CritiqueType
	Impact         float64 // in [0,1]
	CreatedAt      time.Time
}

// ConsensusWeight is one row of a question's current ranking. Rows are
// fully replaced on each successful run (Invariant: no historical rows).
type ConsensusWeight struct {
	QuestionID  string
	AnswerID    string
	AgentID     string
	FinalWeight float64
	Rank        int
}

// Algorithm identifies which voting procedure produced a ConsensusLog row.
type Algorithm string

const (
	AlgorithmBFT    Algorithm = "BFT"
	AlgorithmDPoR   Algorithm = "DPOR"
	AlgorithmHybrid Algorithm = "HYBRID"
)

// ConsensusLog is an append-only audit row written once per successful run.
type ConsensusLog struct {
	ID                string
	QuestionID        string
	Algorithm         Algorithm
	ParticipantCount  int
	ConfidenceLevel   float64
	WinningAnswerID   *string
	ConsensusStrength float64
	CalculationTimeMs int64
	CreatedAt         time.Time
}
