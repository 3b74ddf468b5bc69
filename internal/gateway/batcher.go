package gateway

import (
	"sync"
	"time"
)

const batchWindow = 100 * time.Millisecond

// Update is one upsert into a batch: Key identifies the entity
// (id | answerId | agentId | "global") for latest-wins dedup within a
// window.
type Update struct {
	Room       string
	UpdateType string
	Key        string
	Payload    any
}

// batchKey identifies one (room, updateType) timer actor.
type batchKey struct {
	room       string
	updateType string
}

// batcher owns all (room, updateType) actors. Each actor is a single
// goroutine that owns its own timer and send, matching §5's "single
// goroutine/task that owns timer expiry and sending" requirement.
type batcher struct {
	mu     sync.Mutex
	actors map[batchKey]*batchActor
	flush  func(room, updateType string, items map[string]any)
}

func newBatcher(flush func(room, updateType string, items map[string]any)) *batcher {
	return &batcher{actors: make(map[batchKey]*batchActor), flush: flush}
}

// Upsert adds or replaces u.Key's payload in the current window for
// (u.Room, u.UpdateType), starting the window's timer on first upsert.
func (b *batcher) Upsert(u Update) {
	key := batchKey{room: u.Room, updateType: u.UpdateType}

	b.mu.Lock()
	actor, ok := b.actors[key]
	if !ok {
		actor = newBatchActor(key, b.flush, func() {
			b.mu.Lock()
			delete(b.actors, key)
			b.mu.Unlock()
		})
		b.actors[key] = actor
	}
	b.mu.Unlock()

	actor.upsert(u.Key, u.Payload)
}

// batchActor accumulates latest-wins updates for one (room, updateType)
// pair and flushes them once after batchWindow elapses from its first
// upsert.
type batchActor struct {
	key     batchKey
	upserts chan keyedPayload
	flush   func(room, updateType string, items map[string]any)
	onDone  func()
}

type keyedPayload struct {
	key     string
	payload any
}

func newBatchActor(key batchKey, flush func(room, updateType string, items map[string]any), onDone func()) *batchActor {
	a := &batchActor{key: key, upserts: make(chan keyedPayload, 256), flush: flush, onDone: onDone}
	go a.run()
	return a
}

func (a *batchActor) upsert(key string, payload any) {
	a.upserts <- keyedPayload{key: key, payload: payload}
}

func (a *batchActor) run() {
	items := make(map[string]any)
	timer := time.NewTimer(batchWindow)
	defer timer.Stop()

	for {
		select {
		case kp := <-a.upserts:
			items[kp.key] = kp.payload
		case <-timer.C:
			a.onDone()
			if len(items) > 0 {
				a.flush(a.key.room, a.key.updateType, items)
			}
			return
		}
	}
}
