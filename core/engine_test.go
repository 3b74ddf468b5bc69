package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "swarmconsensus/core"
)

type recordingBus struct {
	mu   sync.Mutex
	envs []Envelope
}

func (b *recordingBus) Publish(_ context.Context, _ string, env Envelope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.envs = append(b.envs, env)
	return nil
}

func (b *recordingBus) Subscribe(_ context.Context, _ string, _ func(Envelope)) (func(), error) {
	return func() {}, nil
}

func (b *recordingBus) types() []MessageType {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]MessageType, len(b.envs))
	for i, e := range b.envs {
		out[i] = e.Type
	}
	return out
}

func baseSnapshot() *Snapshot {
	return &Snapshot{
		Question: Question{ID: "q1", Status: StatusOpen, MinAnswers: 2, ConsensusThreshold: 0.3, Category: CategoryCreative},
		Answers: []Answer{
			{ID: "a1", AgentID: "ag1", Confidence: 0.9, SubmittedAt: time.Unix(0, 0)},
			{ID: "a2", AgentID: "ag2", Confidence: 0.1, SubmittedAt: time.Unix(1, 0)},
		},
		Agents: map[string]Agent{
			"ag1": {ID: "ag1", ReputationScore: 10, AccuracyRate: 0.9, TotalAnswers: 5},
			"ag2": {ID: "ag2", ReputationScore: 2, AccuracyRate: 0.2, TotalAnswers: 1},
		},
	}
}

func TestEngineRunPublishesConsensusCalculated(t *testing.T) {
	store := &fakeStore{snap: baseSnapshot()}
	bus := &recordingBus{}
	engine := NewEngine(store, nil, bus, fixedClock{time.Unix(0, 0)})

	outcome, err := engine.Run(context.Background(), RunRequest{QuestionID: "q1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Algorithm != AlgorithmHybrid {
		t.Errorf("algorithm = %v, want HYBRID (CREATIVE category default)", outcome.Algorithm)
	}
	if len(store.committed) != 1 {
		t.Fatalf("expected one commit, got %d", len(store.committed))
	}

	types := bus.types()
	if len(types) != 1 || types[0] != MessageConsensusCalculated {
		t.Errorf("expected a single consensus:calculated event, got %v", types)
	}
}

func TestEngineRunPublishesConsensusFailedOnInsufficientEvidence(t *testing.T) {
	snap := baseSnapshot()
	snap.Question.MinAnswers = 5
	store := &fakeStore{snap: snap}
	bus := &recordingBus{}
	engine := NewEngine(store, nil, bus, fixedClock{time.Unix(0, 0)})

	_, err := engine.Run(context.Background(), RunRequest{QuestionID: "q1"})
	if err == nil {
		t.Fatal("expected an error")
	}
	types := bus.types()
	if len(types) != 1 || types[0] != MessageConsensusFailed {
		t.Errorf("expected a single consensus:failed event, got %v", types)
	}
	if len(store.committed) != 0 {
		t.Errorf("expected no commit on load failure, got %d", len(store.committed))
	}
}

func TestEngineRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &fakeStore{snap: baseSnapshot()}
	engine := NewEngine(store, nil, &recordingBus{}, fixedClock{time.Unix(0, 0)})

	_, err := engine.Run(ctx, RunRequest{QuestionID: "q1"})
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestEngineRunForceAlgorithmOverridesSelection(t *testing.T) {
	store := &fakeStore{snap: baseSnapshot()}
	engine := NewEngine(store, nil, &recordingBus{}, fixedClock{time.Unix(0, 0)})

	outcome, err := engine.Run(context.Background(), RunRequest{QuestionID: "q1", ForceAlgorithm: AlgorithmDPoR})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Algorithm != AlgorithmDPoR {
		t.Errorf("algorithm = %v, want forced DPOR", outcome.Algorithm)
	}
}
