package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"swarmconsensus/core"
)

// GetConsensus implements core.ConsensusReader for Postgres.
func (p *Postgres) GetConsensus(ctx context.Context, questionID string) (*core.ConsensusSummary, error) {
	var logEntry core.ConsensusLog
	row := p.pool.QueryRow(ctx, `
		SELECT id, question_id, algorithm, participant_count, confidence_level, winning_answer_id, consensus_strength, calculation_time_ms, created_at
		FROM consensus_log WHERE question_id = $1 ORDER BY created_at DESC LIMIT 1`, questionID)
	if err := row.Scan(&logEntry.ID, &logEntry.QuestionID, &logEntry.Algorithm, &logEntry.ParticipantCount,
		&logEntry.ConfidenceLevel, &logEntry.WinningAnswerID, &logEntry.ConsensusStrength, &logEntry.CalculationTimeMs, &logEntry.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("store: load consensus log: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT question_id, answer_id, agent_id, final_weight, rank
		FROM consensus_weights WHERE question_id = $1 ORDER BY rank ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("store: load consensus weights: %w", err)
	}
	defer rows.Close()

	var weights []core.ConsensusWeight
	for rows.Next() {
		var w core.ConsensusWeight
		if err := rows.Scan(&w.QuestionID, &w.AnswerID, &w.AgentID, &w.FinalWeight, &w.Rank); err != nil {
			return nil, fmt.Errorf("store: scan consensus weight: %w", err)
		}
		weights = append(weights, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	answers, agents, err := p.loadSummaryJoins(ctx, questionID)
	if err != nil {
		return nil, err
	}

	return &core.ConsensusSummary{Log: logEntry, Weights: weights, Answers: answers, Agents: agents}, nil
}

func (p *Postgres) loadSummaryJoins(ctx context.Context, questionID string) (map[string]core.Answer, map[string]core.Agent, error) {
	answers := make(map[string]core.Answer)
	agents := make(map[string]core.Agent)

	rows, err := p.pool.Query(ctx, `
		SELECT id, question_id, agent_id, content, reasoning, confidence, submitted_at, final_weight, consensus_rank
		FROM answers WHERE question_id = $1`, questionID)
	if err != nil {
		return nil, nil, fmt.Errorf("store: load answer summary: %w", err)
	}
	defer rows.Close()

	var agentIDs []string
	for rows.Next() {
		var a core.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.AgentID, &a.Content, &a.Reasoning, &a.Confidence, &a.SubmittedAt, &a.FinalWeight, &a.ConsensusRank); err != nil {
			return nil, nil, fmt.Errorf("store: scan answer summary: %w", err)
		}
		answers[a.ID] = a
		agentIDs = append(agentIDs, a.AgentID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(agentIDs) == 0 {
		return answers, agents, nil
	}

	aRows, err := p.pool.Query(ctx, `SELECT id, reputation_score, accuracy_rate, total_answers FROM agents WHERE id = ANY($1)`, agentIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("store: load agent summary: %w", err)
	}
	defer aRows.Close()
	for aRows.Next() {
		var a core.Agent
		if err := aRows.Scan(&a.ID, &a.ReputationScore, &a.AccuracyRate, &a.TotalAnswers); err != nil {
			return nil, nil, fmt.Errorf("store: scan agent summary: %w", err)
		}
		agents[a.ID] = a
	}
	return answers, agents, aRows.Err()
}

// GetStatus implements core.ConsensusReader for Postgres.
func (p *Postgres) GetStatus(ctx context.Context, questionID string) (*core.RunProgress, error) {
	var status core.QuestionStatus
	var reachedAt *time.Time
	var answerCount int

	row := p.pool.QueryRow(ctx, `
		SELECT q.status, q.consensus_reached_at, (SELECT count(*) FROM answers a WHERE a.question_id = q.id)
		FROM questions q WHERE q.id = $1`, questionID)
	if err := row.Scan(&status, &reachedAt, &answerCount); err != nil {
		if err == pgx.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("store: load question status: %w", err)
	}

	var hasConsensus bool
	if err := p.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM consensus_log WHERE question_id = $1)`, questionID).Scan(&hasConsensus); err != nil {
		return nil, fmt.Errorf("store: check consensus log: %w", err)
	}

	var reachedAtStr *string
	if reachedAt != nil {
		s := reachedAt.Format(time.RFC3339)
		reachedAtStr = &s
	}

	return &core.RunProgress{
		Calculation:        "idle",
		QuestionStatus:     status,
		AnswerCount:        answerCount,
		ConsensusReachedAt: reachedAtStr,
		HasConsensus:       hasConsensus,
	}, nil
}

var _ core.ConsensusReader = (*Postgres)(nil)
