package core

import "time"

// Topic is the single logical pub/sub topic carrying all typed messages
// (§4.6). The system uses one topic; message identity is carried by
// Envelope.Type.
const Topic = "swarm:events"

// MessageType enumerates the six typed messages carried on Topic.
type MessageType string

const (
	MessageAnswerSubmitted        MessageType = "answer:submitted"
	MessageConsensusCalculated    MessageType = "consensus:calculated"
	MessageConsensusFailed        MessageType = "consensus:failed"
	MessageQuestionCreated        MessageType = "question:created"
	MessageLeaderboardUpdated     MessageType = "leaderboard:updated"
	MessageAgentReputationUpdated MessageType = "agent:reputation:updated"
)

// Envelope is the typed message carried on Topic. Payload shape varies by
// Type; consumers type-switch on Type before interpreting Payload.
type Envelope struct {
	Type      MessageType
	QuestionID string
	CreatedAt time.Time
	Payload   any
}

// ConsensusCalculatedPayload is Envelope.Payload for MessageConsensusCalculated.
type ConsensusCalculatedPayload struct {
	QuestionID        string
	Algorithm         Algorithm
	WinningAnswerID   *string
	ConsensusStrength float64
	ConfidenceLevel   float64
	ConsensusReached  bool
	CalculationTimeMs int64
}

// ConsensusFailedPayload is Envelope.Payload for MessageConsensusFailed. Reason
// is the opaque-but-stable-per-kind string from Kind.String().
type ConsensusFailedPayload struct {
	QuestionID string
	Reason     string
	Permanent  bool
}
