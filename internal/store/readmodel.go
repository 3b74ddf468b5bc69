package store

import (
	"context"

	"swarmconsensus/core"
)

// GetConsensus implements core.ConsensusReader for Memory: the latest
// ConsensusLog row for questionID plus its current ConsensusWeight rows
// and a joined answer/agent summary.
func (m *Memory) GetConsensus(_ context.Context, questionID string) (*core.ConsensusSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *core.ConsensusLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].QuestionID == questionID {
			latest = &m.logs[i]
			break
		}
	}
	if latest == nil {
		return nil, core.ErrNotFound
	}

	weights := append([]core.ConsensusWeight(nil), m.weights[questionID]...)

	answers := make(map[string]core.Answer)
	agents := make(map[string]core.Agent)
	for _, a := range m.answers[questionID] {
		answers[a.ID] = a
		if ag, ok := m.agents[a.AgentID]; ok {
			agents[a.AgentID] = ag
		}
	}

	return &core.ConsensusSummary{Log: *latest, Weights: weights, Answers: answers, Agents: agents}, nil
}

// GetStatus implements core.ConsensusReader for Memory.
func (m *Memory) GetStatus(_ context.Context, questionID string) (*core.RunProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[questionID]
	if !ok {
		return nil, core.ErrNotFound
	}

	hasConsensus := false
	for _, l := range m.logs {
		if l.QuestionID == questionID {
			hasConsensus = true
			break
		}
	}

	var reachedAt *string
	if q.ConsensusReachedAt != nil {
		s := q.ConsensusReachedAt.Format("2006-01-02T15:04:05Z07:00")
		reachedAt = &s
	}

	return &core.RunProgress{
		Calculation:        "idle",
		QuestionStatus:     q.Status,
		AnswerCount:        len(m.answers[questionID]),
		ConsensusReachedAt: reachedAt,
		HasConsensus:       hasConsensus,
	}, nil
}

var _ core.ConsensusReader = (*Memory)(nil)
