package queue

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"

	"swarmconsensus/core"
)

// EnqueueResult is returned by Enqueue (§4.5 public operations).
type EnqueueResult struct {
	JobID        string
	Status       State
	EstimatedMs  int64
}

// EnqueueRequest is the caller-facing request to TriggerConsensus.
type EnqueueRequest struct {
	QuestionID     string
	Priority       int
	ForceAlgorithm core.Algorithm
	RequestedBy    string
}

// Queue is the C5 priority job queue. Dedup state (at most one job per
// questionId in {waiting, active}) is a mutex-guarded map, the same shape
// as the teacher's `replicatedMessages`/`replicatedMu` pair in
// core/network.go, generalized from byte-slice dedup to job dedup.
type Queue struct {
	mu         sync.Mutex
	heap       priorityHeap
	byID       map[string]*Job
	byQuestion map[string]*Job // only entries in {waiting, active}
	lastTerminal map[string]*Job // most recent completed/failed job per questionId, for Status
	notify     chan struct{}

	maxAttempts int
	backoffBase time.Duration
}

func New() *Queue {
	q := &Queue{
		byID:         make(map[string]*Job),
		byQuestion:   make(map[string]*Job),
		lastTerminal: make(map[string]*Job),
		notify:       make(chan struct{}, 1),
		maxAttempts:  3,
		backoffBase:  200 * time.Millisecond,
	}
	heap.Init(&q.heap)
	return q
}

// Enqueue adds req to the queue, or returns the existing job's id/state if
// one is already waiting or active for req.QuestionID (§4.5 Deduplication,
// Invariant 5: at most one in-flight consensus job per questionId).
func (q *Queue) Enqueue(req EnqueueRequest) EnqueueResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	if existing, ok := q.byQuestion[req.QuestionID]; ok {
		return EnqueueResult{JobID: existing.ID, Status: existing.State, EstimatedMs: estimate(existing.Priority)}
	}

	job := &Job{
		ID:             uuid.New().String(),
		QuestionID:     req.QuestionID,
		Priority:       req.Priority,
		ForceAlgorithm: req.ForceAlgorithm,
		RequestedBy:    req.RequestedBy,
		EnqueuedAt:     time.Now(),
		State:          StateWaiting,
	}
	q.byID[job.ID] = job
	q.byQuestion[job.QuestionID] = job
	heap.Push(&q.heap, &heapJob{job: job})
	q.wake()

	return EnqueueResult{JobID: job.ID, Status: StateWaiting, EstimatedMs: estimate(job.Priority)}
}

// estimate returns a crude estimatedMs derived from priority; not part of
// any invariant, purely advisory for API consumers.
func estimate(priority int) int64 {
	base := int64(500)
	if priority > 0 {
		base -= int64(priority) * 10
		if base < 100 {
			base = 100
		}
	}
	return base
}

func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pop removes and returns the highest-priority waiting job, marking it
// active. Returns nil, false if the queue is empty.
func (q *Queue) pop() (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.heap.Len() == 0 {
		return nil, false
	}
	hj := heap.Pop(&q.heap).(*heapJob)
	job := hj.job
	job.State = StateActive
	return job, true
}

// requeue re-enqueues job with an incremented attempt count, preserving its
// dedup entry (it is still "in flight" from the caller's point of view).
func (q *Queue) requeue(job *Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.State = StateWaiting
	job.EnqueuedAt = time.Now()
	heap.Push(&q.heap, &heapJob{job: job})
	q.wake()
}

// complete marks job completed, releases its dedup slot, and retains it as
// the question's last terminal job so Status can still report completed(when)
// after the dedup slot is gone.
func (q *Queue) complete(job *Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now()
	job.State = StateCompleted
	job.CompletedAt = &now
	delete(q.byQuestion, job.QuestionID)
	q.lastTerminal[job.QuestionID] = job
}

// failPermanently marks job failed, releases its dedup slot, and retains it
// as the question's last terminal job so Status can still report
// failed(reason) after the dedup slot is gone.
func (q *Queue) failPermanently(job *Job, reason string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.State = StateFailed
	job.FailReason = reason
	delete(q.byQuestion, job.QuestionID)
	q.lastTerminal[job.QuestionID] = job
}

// Status reports the current state of the most recent job for questionId,
// or idle if none exists (§4.5 public operations). A job still in flight
// (waiting/active) takes precedence over a stale terminal record from an
// earlier run of the same question.
func (q *Queue) Status(questionID string) (State, *Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job, ok := q.byQuestion[questionID]; ok {
		return job.State, job
	}
	if job, ok := q.lastTerminal[questionID]; ok {
		return job.State, job
	}
	return "idle", nil
}

// Stats reports queue size and per-state counts for observability.
type Stats struct {
	Waiting int
	Active  int
	Total   int
}

func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	var s Stats
	s.Total = len(q.byID)
	for _, j := range q.byID {
		switch j.State {
		case StateWaiting:
			s.Waiting++
		case StateActive:
			s.Active++
		}
	}
	return s
}
