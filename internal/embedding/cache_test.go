package embedding_test

import (
	"context"
	"errors"
	"testing"

	"swarmconsensus/internal/embedding"
)

type fakeEmbedder struct {
	calls   int
	vectors [][]float64
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func TestCachedAvoidsRedundantCalls(t *testing.T) {
	fake := &fakeEmbedder{vectors: [][]float64{{1, 2}}}
	cached, err := embedding.NewCached(fake, 16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := []string{"hello world"}
	if _, err := cached.Embed(context.Background(), texts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.Embed(context.Background(), texts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("expected one underlying call for an identical batch, got %d", fake.calls)
	}
}

func TestCachedDistinguishesDifferentBatches(t *testing.T) {
	fake := &fakeEmbedder{vectors: [][]float64{{1, 2}}}
	cached, _ := embedding.NewCached(fake, 16)

	cached.Embed(context.Background(), []string{"a"})
	cached.Embed(context.Background(), []string{"b"})
	if fake.calls != 2 {
		t.Errorf("expected two underlying calls for distinct batches, got %d", fake.calls)
	}
}

func TestCachedPropagatesUnderlyingError(t *testing.T) {
	fake := &fakeEmbedder{err: errors.New("unavailable")}
	cached, _ := embedding.NewCached(fake, 16)
	if _, err := cached.Embed(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected the underlying error to propagate")
	}
}
