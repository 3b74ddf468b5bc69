// Package store provides Store Port adapters: an in-memory double for
// tests (per Design Note 9) and a pgx/v5-backed Postgres adapter for
// production.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"swarmconsensus/core"
)

// Memory is an in-memory Store double. It is not safe for use as a
// production store (no durability), but implements the exact
// LoadSnapshot/CommitWriteSet contract the engine depends on, so the core
// package can be tested without a database (Design Note 9: "constructor-
// injected ports so the engine can be tested with in-memory doubles").
type Memory struct {
	mu sync.Mutex

	questions map[string]core.Question
	answers   map[string][]core.Answer // questionId -> answers
	agents    map[string]core.Agent
	stakes    map[string][]core.Stake // answerId -> stakes
	rounds    map[string][]core.DebateRound // questionId -> rounds
	critiques map[string][]core.Critique    // roundId -> critiques

	weights map[string][]core.ConsensusWeight // questionId -> weights
	logs    []core.ConsensusLog
}

func NewMemory() *Memory {
	return &Memory{
		questions: make(map[string]core.Question),
		answers:   make(map[string][]core.Answer),
		agents:    make(map[string]core.Agent),
		stakes:    make(map[string][]core.Stake),
		rounds:    make(map[string][]core.DebateRound),
		critiques: make(map[string][]core.Critique),
		weights:   make(map[string][]core.ConsensusWeight),
	}
}

// Seed helpers for tests.

func (m *Memory) PutQuestion(q core.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
}

func (m *Memory) PutAgent(a core.Agent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[a.ID] = a
}

func (m *Memory) PutAnswer(a core.Answer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers[a.QuestionID] = append(m.answers[a.QuestionID], a)
}

func (m *Memory) PutStake(s core.Stake) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stakes[s.AnswerID] = append(m.stakes[s.AnswerID], s)
}

func (m *Memory) PutRound(r core.DebateRound) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[r.QuestionID] = append(m.rounds[r.QuestionID], r)
}

func (m *Memory) PutCritique(c core.Critique) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.critiques[c.DebateRoundID] = append(m.critiques[c.DebateRoundID], c)
}

func (m *Memory) Logs() []core.ConsensusLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.ConsensusLog, len(m.logs))
	copy(out, m.logs)
	return out
}

func (m *Memory) Weights(questionID string) []core.ConsensusWeight {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.ConsensusWeight, len(m.weights[questionID]))
	copy(out, m.weights[questionID])
	return out
}

func (m *Memory) QuestionStatus(questionID string) core.QuestionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.questions[questionID].Status
}

// LoadSnapshot implements core.Store.
func (m *Memory) LoadSnapshot(_ context.Context, questionID string) (*core.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[questionID]
	if !ok {
		return nil, core.ErrNotFound
	}

	answers := append([]core.Answer(nil), m.answers[questionID]...)

	agents := make(map[string]core.Agent)
	stakes := make(map[string][]core.Stake)
	for _, a := range answers {
		if ag, ok := m.agents[a.AgentID]; ok {
			agents[a.AgentID] = ag
		}
		stakes[a.ID] = append([]core.Stake(nil), m.stakes[a.ID]...)
	}

	rounds := append([]core.DebateRound(nil), m.rounds[questionID]...)
	// ordered by roundNumber descending, per the Evidence Loader contract
	for i := 1; i < len(rounds); i++ {
		for j := i; j > 0 && rounds[j].RoundNumber > rounds[j-1].RoundNumber; j-- {
			rounds[j], rounds[j-1] = rounds[j-1], rounds[j]
		}
	}

	critiques := make(map[string][]core.Critique, len(rounds))
	for _, r := range rounds {
		critiques[r.ID] = append([]core.Critique(nil), m.critiques[r.ID]...)
	}

	return &core.Snapshot{
		Question:  q,
		Answers:   answers,
		Agents:    agents,
		Stakes:    stakes,
		Rounds:    rounds,
		Critiques: critiques,
	}, nil
}

// CommitWriteSet implements core.Store: delete-then-insert
// ConsensusWeight, update Answer rows, conditionally advance
// Question.Status, append one ConsensusLog row, all under one mutex
// (the in-memory stand-in for a database transaction).
func (m *Memory) CommitWriteSet(_ context.Context, ws core.WriteSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.questions[ws.QuestionID]
	if !ok {
		return core.ErrNotFound
	}
	if ws.NewStatus.Regresses(q.Status) {
		return core.ErrStatusRegression
	}

	m.weights[ws.QuestionID] = append([]core.ConsensusWeight(nil), ws.Weights...)

	answers := m.answers[ws.QuestionID]
	for i := range answers {
		if u, ok := ws.AnswerUpdates[answers[i].ID]; ok {
			w := u.FinalWeight
			r := u.Rank
			answers[i].FinalWeight = &w
			answers[i].ConsensusRank = &r
		}
	}

	if ws.NewStatus != q.Status {
		q.Status = ws.NewStatus
		if ws.ConsensusReached && q.ConsensusReachedAt == nil {
			now := ws.Log.CreatedAt
			q.ConsensusReachedAt = &now
		}
		m.questions[ws.QuestionID] = q
	}

	logEntry := ws.Log
	if logEntry.ID == "" {
		logEntry.ID = uuid.New().String()
	}
	m.logs = append(m.logs, logEntry)

	return nil
}

var _ core.Store = (*Memory)(nil)
