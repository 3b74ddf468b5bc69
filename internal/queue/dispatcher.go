package queue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"swarmconsensus/core"
)

// Dispatcher is the engine-facing TriggerConsensus port (§6). If Queue is
// nil, TriggerConsensus runs the job synchronously on the caller's goroutine with
// the same contract (§4.5: "The queue is an optional capability").
type Dispatcher struct {
	Queue  *Queue
	Runner Runner
}

func NewDispatcher(q *Queue, runner Runner) *Dispatcher {
	return &Dispatcher{Queue: q, Runner: runner}
}

// TriggerConsensus enqueues (or synchronously runs) a consensus request.
func (d *Dispatcher) TriggerConsensus(ctx context.Context, questionID string, priority int, force core.Algorithm, requestedBy string) (EnqueueResult, error) {
	if d.Queue != nil {
		return d.Queue.Enqueue(EnqueueRequest{
			QuestionID:     questionID,
			Priority:       priority,
			ForceAlgorithm: force,
			RequestedBy:    requestedBy,
		}), nil
	}

	start := time.Now()
	jobID := uuid.New().String()
	_, err := d.Runner.Run(ctx, core.RunRequest{QuestionID: questionID, ForceAlgorithm: force})
	if err != nil {
		return EnqueueResult{JobID: jobID, Status: StateFailed}, err
	}
	return EnqueueResult{JobID: jobID, Status: StateCompleted, EstimatedMs: time.Since(start).Milliseconds()}, nil
}

// Status reports job status for questionId, delegating to Queue when
// present.
func (d *Dispatcher) Status(questionID string) (State, *Job) {
	if d.Queue == nil {
		return "idle", nil
	}
	return d.Queue.Status(questionID)
}
