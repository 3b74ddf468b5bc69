package embedding

import (
	"context"

	"golang.org/x/time/rate"

	"swarmconsensus/core"
)

// embedFunc adapts a plain function to core.Embedder's single-method shape,
// the way http.HandlerFunc adapts a function to http.Handler.
type embedFunc func(ctx context.Context, texts []string) ([][]float64, error)

func (f embedFunc) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	return f(ctx, texts)
}

// NewRateLimited wraps next with a token-bucket limiter bounding the
// embedding call rate independently of GRPCEmbedder's outstanding-call
// semaphore, grounded on the teacher's indirect golang.org/x/time
// dependency (SPEC_FULL.md §2 domain stack). next is accepted as
// core.Embedder so the wrapper composes with any embedder, not just
// GRPCEmbedder.
func NewRateLimited(next core.Embedder, ratePerSecond float64, burst int) embedFunc {
	limiter := rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	return func(ctx context.Context, texts []string) ([][]float64, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return next.Embed(ctx, texts)
	}
}
