package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"swarmconsensus/core"
)

// Postgres is the production Store Port adapter, backed by pgx/v5's
// connection pool. Grounded on jordigilh-kubernaut's pkg/datastorage test
// suite (NewPgxConnConfig, QueryExecModeDescribeExec) since the teacher
// itself has no relational store — its KVStore is a key-value log, not a
// match for the Store Port's multi-table transactional write-set.
type Postgres struct {
	pool *pgxpool.Pool
}

// Open builds a connection pool from dsn, setting the statement-caching
// mode the pack's pgx grounding uses (QueryExecModeDescribeExec avoids
// server-side prepared statement buildup behind connection poolers).
func Open(ctx context.Context, dsn string, maxConns int32) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("store: parse dsn: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeDescribeExec

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

// LoadSnapshot runs the five-table evidence read in one RepeatableRead
// transaction so the snapshot handed to C2/C3 is read-consistent (§4.1).
func (p *Postgres) LoadSnapshot(ctx context.Context, questionID string) (*core.Snapshot, error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	q, err := loadQuestion(ctx, tx, questionID)
	if err != nil {
		return nil, err
	}

	answers, err := loadAnswers(ctx, tx, questionID)
	if err != nil {
		return nil, err
	}

	agents, err := loadAgentsFor(ctx, tx, answers)
	if err != nil {
		return nil, err
	}

	stakes, err := loadStakesFor(ctx, tx, answers)
	if err != nil {
		return nil, err
	}

	rounds, critiques, err := loadDebate(ctx, tx, questionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("store: commit read: %w", err)
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

func loadQuestion(ctx context.Context, tx pgx.Tx, questionID string) (core.Question, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, category, status, min_answers, consensus_threshold, open_until, consensus_reached_at
		FROM questions WHERE id = $1`, questionID)

	var q core.Question
	if err := row.Scan(&q.ID, &q.Category, &q.Status, &q.MinAnswers, &q.ConsensusThreshold, &q.OpenUntil, &q.ConsensusReachedAt); err != nil {
		if err == pgx.ErrNoRows {
			return core.Question{}, core.ErrNotFound
		}
		return core.Question{}, fmt.Errorf("store: load question: %w", err)
	}
	return q, nil
}

func loadAnswers(ctx context.Context, tx pgx.Tx, questionID string) ([]core.Answer, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, question_id, agent_id, content, reasoning, confidence, submitted_at, final_weight, consensus_rank
		FROM answers WHERE question_id = $1 ORDER BY submitted_at ASC`, questionID)
	if err != nil {
		return nil, fmt.Errorf("store: load answers: %w", err)
	}
	defer rows.Close()

	var out []core.Answer
	for rows.Next() {
		var a core.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.AgentID, &a.Content, &a.Reasoning, &a.Confidence, &a.SubmittedAt, &a.FinalWeight, &a.ConsensusRank); err != nil {
			return nil, fmt.Errorf("store: scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func loadAgentsFor(ctx context.Context, tx pgx.Tx, answers []core.Answer) (map[string]core.Agent, error) {
	agents := make(map[string]core.Agent, len(answers))
	ids := uniqueAgentIDs(answers)
	if len(ids) == 0 {
		return agents, nil
	}

	rows, err := tx.Query(ctx, `
		SELECT id, reputation_score, accuracy_rate, total_answers
		FROM agents WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("store: load agents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a core.Agent
		if err := rows.Scan(&a.ID, &a.ReputationScore, &a.AccuracyRate, &a.TotalAnswers); err != nil {
			return nil, fmt.Errorf("store: scan agent: %w", err)
		}
		agents[a.ID] = a
	}
	return agents, rows.Err()
}

func loadStakesFor(ctx context.Context, tx pgx.Tx, answers []core.Answer) (map[string][]core.Stake, error) {
	out := make(map[string][]core.Stake, len(answers))
	ids := make([]string, len(answers))
	for i, a := range answers {
		ids[i] = a.ID
	}
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := tx.Query(ctx, `
		SELECT id, answer_id, agent_id, amount, status
		FROM stakes WHERE answer_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("store: load stakes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s core.Stake
		if err := rows.Scan(&s.ID, &s.AnswerID, &s.AgentID, &s.Amount, &s.Status); err != nil {
			return nil, fmt.Errorf("store: scan stake: %w", err)
		}
		out[s.AnswerID] = append(out[s.AnswerID], s)
	}
	return out, rows.Err()
}

func loadDebate(ctx context.Context, tx pgx.Tx, questionID string) ([]core.DebateRound, map[string][]core.Critique, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, question_id, round_number, started_at, ended_at
		FROM debate_rounds WHERE question_id = $1 ORDER BY round_number DESC`, questionID)
	if err != nil {
		return nil, nil, fmt.Errorf("store: load debate rounds: %w", err)
	}

	var rounds []core.DebateRound
	for rows.Next() {
		var r core.DebateRound
		if err := rows.Scan(&r.ID, &r.QuestionID, &r.RoundNumber, &r.StartedAt, &r.EndedAt); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("store: scan debate round: %w", err)
		}
		rounds = append(rounds, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	critiques := make(map[string][]core.Critique, len(rounds))
	for _, r := range rounds {
		cRows, err := tx.Query(ctx, `
			SELECT id, debate_round_id, critic_agent_id, target_answer_id, type, impact, created_at
			FROM critiques WHERE debate_round_id = $1 ORDER BY created_at ASC`, r.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("store: load critiques: %w", err)
		}
		for cRows.Next() {
			var c core.Critique
			if err := cRows.Scan(&c.ID, &c.DebateRoundID, &c.CriticAgentID, &c.TargetAnswerID, &c.Type, &c.Impact, &c.CreatedAt); err != nil {
				cRows.Close()
				return nil, nil, fmt.Errorf("store: scan critique: %w", err)
			}
			critiques[r.ID] = append(critiques[r.ID], c)
		}
		cRows.Close()
		if err := cRows.Err(); err != nil {
			return nil, nil, err
		}
	}

	return rounds, critiques, nil
}

func uniqueAgentIDs(answers []core.Answer) []string {
	seen := make(map[string]struct{}, len(answers))
	var out []string
	for _, a := range answers {
		if _, ok := seen[a.AgentID]; ok {
			continue
		}
		seen[a.AgentID] = struct{}{}
		out = append(out, a.AgentID)
	}
	return out
}

// CommitWriteSet applies ws atomically: delete-then-insert
// ConsensusWeight, update Answer rows, conditionally advance
// Question.Status, append one ConsensusLog row (§4.4). Unique constraints
// (question_id, agent_id) on answers and (question_id, round_number) on
// debate_rounds are enforced by the schema, not re-checked here.
func (p *Postgres) CommitWriteSet(ctx context.Context, ws core.WriteSet) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentStatus core.QuestionStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM questions WHERE id = $1 FOR UPDATE`, ws.QuestionID).Scan(&currentStatus); err != nil {
		if err == pgx.ErrNoRows {
			return core.ErrNotFound
		}
		return fmt.Errorf("store: lock question: %w", err)
	}
	if ws.NewStatus.Regresses(currentStatus) {
		return core.ErrStatusRegression
	}

	if _, err := tx.Exec(ctx, `DELETE FROM consensus_weights WHERE question_id = $1`, ws.QuestionID); err != nil {
		return fmt.Errorf("store: delete consensus_weights: %w", err)
	}

	for _, cw := range ws.Weights {
		if _, err := tx.Exec(ctx, `
			INSERT INTO consensus_weights (question_id, answer_id, agent_id, final_weight, rank)
			VALUES ($1, $2, $3, $4, $5)`, cw.QuestionID, cw.AnswerID, cw.AgentID, cw.FinalWeight, cw.Rank); err != nil {
			return fmt.Errorf("store: insert consensus_weight: %w", err)
		}
	}

	for answerID, u := range ws.AnswerUpdates {
		if _, err := tx.Exec(ctx, `
			UPDATE answers SET final_weight = $1, consensus_rank = $2 WHERE id = $3`, u.FinalWeight, u.Rank, answerID); err != nil {
			return fmt.Errorf("store: update answer: %w", err)
		}
	}

	if ws.NewStatus != currentStatus {
		if ws.ConsensusReached {
			if _, err := tx.Exec(ctx, `
				UPDATE questions SET status = $1, consensus_reached_at = $2 WHERE id = $3`,
				ws.NewStatus, ws.Log.CreatedAt, ws.QuestionID); err != nil {
				return fmt.Errorf("store: update question status: %w", err)
			}
		} else if _, err := tx.Exec(ctx, `UPDATE questions SET status = $1 WHERE id = $2`, ws.NewStatus, ws.QuestionID); err != nil {
			return fmt.Errorf("store: update question status: %w", err)
		}
	}

	logID := ws.Log.ID
	if logID == "" {
		logID = uuid.New().String()
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO consensus_log (id, question_id, algorithm, participant_count, confidence_level, winning_answer_id, consensus_strength, calculation_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		logID, ws.Log.QuestionID, ws.Log.Algorithm, ws.Log.ParticipantCount, ws.Log.ConfidenceLevel,
		ws.Log.WinningAnswerID, ws.Log.ConsensusStrength, ws.Log.CalculationTimeMs, ws.Log.CreatedAt); err != nil {
		return fmt.Errorf("store: insert consensus_log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

var _ core.Store = (*Postgres)(nil)
