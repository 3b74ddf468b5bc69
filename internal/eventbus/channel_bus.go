// Package eventbus implements the Event Bus Port (C6): a single logical
// topic swarm:events, with an in-process channel-backed implementation for
// single-process deployments/tests and a libp2p-pubsub-backed
// implementation for cross-process fan-out.
package eventbus

import (
	"context"
	"sync"

	"swarmconsensus/core"
)

// ChannelBus is an in-process Bus implementation: each Subscribe call gets
// its own buffered channel drained by a dedicated goroutine, matching the
// "fire-and-forget, best-effort" contract of §4.6 without blocking
// publishers on slow subscribers.
type ChannelBus struct {
	mu          sync.RWMutex
	subscribers map[string]map[int]chan core.Envelope
	nextID      int
}

func NewChannelBus() *ChannelBus {
	return &ChannelBus{subscribers: make(map[string]map[int]chan core.Envelope)}
}

func (b *ChannelBus) Publish(_ context.Context, topic string, envelope core.Envelope) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- envelope:
		default:
			// best-effort delivery: a full subscriber channel drops the
			// message rather than blocking the publisher (§4.6).
		}
	}
	return nil
}

func (b *ChannelBus) Subscribe(ctx context.Context, topic string, handler func(core.Envelope)) (func(), error) {
	ch := make(chan core.Envelope, 64)

	b.mu.Lock()
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[int]chan core.Envelope)
	}
	id := b.nextID
	b.nextID++
	b.subscribers[topic][id] = ch
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case env, ok := <-ch:
				if !ok {
					return
				}
				handler(env)
			}
		}
	}()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if m, ok := b.subscribers[topic]; ok {
			if c, ok := m[id]; ok {
				delete(m, id)
				close(c)
			}
		}
	}
	return unsubscribe, nil
}

var _ core.Bus = (*ChannelBus)(nil)
