package queue

import (
	"context"
	"math"
	"time"

	"swarmconsensus/core"
)

// Runner executes one consensus request to completion; core.Engine
// satisfies this.
type Runner interface {
	Run(ctx context.Context, req core.RunRequest) (core.RunOutcome, error)
}

// Pool is a fixed-size worker pool draining Queue (§4.5 Concurrency:
// "Worker pool of size W... each worker holds at most one job").
type Pool struct {
	queue  *Queue
	runner Runner
	size   int
}

func NewPool(q *Queue, runner Runner, size int) *Pool {
	if size <= 0 {
		size = 3
	}
	return &Pool{queue: q, runner: runner, size: size}
}

// Start spawns size worker goroutines, each looping: pop a job, run it,
// retry or complete. Workers exit when ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.workerLoop(ctx)
	}
}

func (p *Pool) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.queue.notify:
		case <-time.After(50 * time.Millisecond):
			// periodic poll in case a wake was missed between a
			// requeue's backoff timer and this worker becoming idle.
		}

		job, ok := p.queue.pop()
		if !ok {
			continue
		}
		p.run(ctx, job)
	}
}

func (p *Pool) run(ctx context.Context, job *Job) {
	req := core.RunRequest{
		QuestionID:     job.QuestionID,
		ForceAlgorithm: job.ForceAlgorithm,
	}

	_, err := p.runner.Run(ctx, req)
	if err == nil {
		p.queue.complete(job)
		return
	}

	kind := core.Classify(err)
	job.Attempts++
	if kind.Retryable() && job.Attempts < p.queue.maxAttempts {
		backoff := p.queue.backoffBase * time.Duration(math.Pow(2, float64(job.Attempts)))
		go func() {
			select {
			case <-time.After(backoff):
				p.queue.requeue(job)
			case <-ctx.Done():
			}
		}()
		return
	}

	p.queue.failPermanently(job, kind.String())
}
