package core

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunRequest is the engine's input for one consensus run (§4.5 job shape,
// minus queue bookkeeping like attempts/priority which belong to the queue
// package).
type RunRequest struct {
	QuestionID      string
	ForceAlgorithm  Algorithm // empty means "apply the selection rule"
	EmbedTimeout    time.Duration
}

// RunOutcome is what the engine reports back to the Job Queue and, via
// events, to subscribers.
type RunOutcome struct {
	Algorithm         Algorithm
	ConsensusReached  bool
	ConsensusStrength float64
	ConfidenceLevel   float64
	WinningAnswerID   *string
	CalculationTimeMs int64
}

const defaultEmbedTimeout = 10 * time.Second

// Engine orchestrates C1 (Loader) -> C2 (parallel weight calculators) -> C3
// (selector + voter) -> C4 (Committer), publishing progress/outcome events
// on Bus (§2 control flow).
type Engine struct {
	loader    *Loader
	committer *Committer
	embedder  Embedder
	bus       Bus
	clock     Clock
}

func NewEngine(store Store, embedder Embedder, bus Bus, clock Clock) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Engine{
		loader:    NewLoader(store),
		committer: NewCommitter(store, clock),
		embedder:  embedder,
		bus:       bus,
		clock:     clock,
	}
}

// Run executes one consensus request to completion. Cancellation is
// honored just before loading, just before commit, and inside the
// embedding call (§5 Cancellation), by checking ctx.Err() at those three
// points — the Go idiom for a cooperative cancellation token.
func (e *Engine) Run(ctx context.Context, req RunRequest) (RunOutcome, error) {
	start := e.clock.Now()

	if err := ctx.Err(); err != nil {
		return RunOutcome{}, e.fail(ctx, req.QuestionID, NewRunError(KindCancelled, ErrCancelled))
	}

	snap, err := e.loader.Load(ctx, req.QuestionID)
	if err != nil {
		return RunOutcome{}, e.fail(ctx, req.QuestionID, err)
	}

	weights, err := e.computeWeights(ctx, snap, req)
	if err != nil {
		return RunOutcome{}, e.fail(ctx, req.QuestionID, err)
	}

	algo := SelectAlgorithm(snap, req.ForceAlgorithm)
	var raw map[string]float64
	switch algo {
	case AlgorithmBFT:
		raw = VoteBFT(snap, weights)
	case AlgorithmDPoR:
		raw = VoteDPoR(snap, weights)
	default:
		raw = VoteHybrid(snap, weights)
	}

	result, err := Finalize(snap, algo, raw, snap.Question.ConsensusThreshold)
	if err != nil {
		return RunOutcome{}, e.fail(ctx, req.QuestionID, err)
	}

	if err := ctx.Err(); err != nil {
		return RunOutcome{}, e.fail(ctx, req.QuestionID, NewRunError(KindCancelled, ErrCancelled))
	}

	calculationMs := e.clock.Now().Sub(start).Milliseconds()
	if err := e.committer.Commit(ctx, snap, result, calculationMs); err != nil {
		return RunOutcome{}, e.fail(ctx, req.QuestionID, err)
	}

	outcome := RunOutcome{
		Algorithm:         algo,
		ConsensusReached:  result.ConsensusReached,
		ConsensusStrength: result.ConsensusStrength,
		ConfidenceLevel:   result.ConfidenceLevel,
		WinningAnswerID:   result.WinningAnswerID,
		CalculationTimeMs: calculationMs,
	}

	e.publish(ctx, req.QuestionID, Envelope{
		Type:       MessageConsensusCalculated,
		QuestionID: req.QuestionID,
		CreatedAt:  e.clock.Wall(),
		Payload: ConsensusCalculatedPayload{
			QuestionID:        req.QuestionID,
			Algorithm:         algo,
			WinningAnswerID:   result.WinningAnswerID,
			ConsensusStrength: result.ConsensusStrength,
			ConfidenceLevel:   result.ConfidenceLevel,
			ConsensusReached:  result.ConsensusReached,
			CalculationTimeMs: calculationMs,
		},
	})

	return outcome, nil
}

// computeWeights runs the four weight calculators concurrently and joins
// them with an errgroup barrier (§4.2, §5), matching Design Note 9's
// "parallel tasks joined by a barrier that returns four typed outputs".
func (e *Engine) computeWeights(ctx context.Context, snap *Snapshot, req RunRequest) (Weights, error) {
	var w Weights

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w.Reputation = ReputationWeights(snap)
		return nil
	})
	g.Go(func() error {
		w.Stake = StakeWeights(snap)
		return nil
	})
	g.Go(func() error {
		w.Debate = DebateWeights(snap)
		return nil
	})
	g.Go(func() error {
		timeout := req.EmbedTimeout
		if timeout <= 0 {
			timeout = defaultEmbedTimeout
		}
		embedCtx, cancel := context.WithTimeout(gctx, timeout)
		defer cancel()
		if err := embedCtx.Err(); err != nil {
			return NewRunError(KindCancelled, ErrCancelled)
		}
		w.Semantic = SemanticWeights(embedCtx, snap, e.embedder)
		return nil
	})

	if err := g.Wait(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// fail classifies err, publishes consensus:failed, and returns the
// classified error for the Job Queue's retry decision.
func (e *Engine) fail(ctx context.Context, questionID string, err error) error {
	kind := Classify(err)
	e.publish(ctx, questionID, Envelope{
		Type:       MessageConsensusFailed,
		QuestionID: questionID,
		CreatedAt:  e.clock.Wall(),
		Payload: ConsensusFailedPayload{
			QuestionID: questionID,
			Reason:     kind.String(),
			Permanent:  !kind.Retryable(),
		},
	})
	return err
}

func (e *Engine) publish(ctx context.Context, questionID string, env Envelope) {
	if e.bus == nil {
		return
	}
	// Best-effort, fire-and-forget (§4.6): publish errors are swallowed
	// rather than failing the run, since the commit has already succeeded
	// (or the failure is already being reported).
	_ = e.bus.Publish(ctx, Topic, env)
}
