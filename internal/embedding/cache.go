package embedding

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"swarmconsensus/core"
)

// Cached wraps an embedder with an LRU cache keyed on the joined batch
// text, so re-running consensus over an unchanged snapshot (§8
// "Round-trip / idempotence") does not re-issue identical embedding calls.
// Grounded on the teacher's indirect golang-lru/v2 dependency. next is
// accepted as core.Embedder so Cached composes over any embedder,
// including another wrapper such as the rate limiter.
type Cached struct {
	next  core.Embedder
	cache *lru.Cache[string, [][]float64]
}

func NewCached(next core.Embedder, size int) (*Cached, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, [][]float64](size)
	if err != nil {
		return nil, err
	}
	return &Cached{next: next, cache: c}, nil
}

func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	key := strings.Join(texts, "\x1f")
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	v, err := c.next.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, v)
	return v, nil
}
