package gateway

import (
	"sync"
	"testing"
	"time"
)

func TestBatcherCoalescesLatestWinsWithinWindow(t *testing.T) {
	var mu sync.Mutex
	var flushed map[string]any
	var flushCount int
	done := make(chan struct{})

	b := newBatcher(func(room, updateType string, items map[string]any) {
		mu.Lock()
		flushed = items
		flushCount++
		mu.Unlock()
		close(done)
	})

	b.Upsert(Update{Room: RoomGlobal, UpdateType: "answer:submitted", Key: "a1", Payload: "first"})
	b.Upsert(Update{Room: RoomGlobal, UpdateType: "answer:submitted", Key: "a1", Payload: "second"})
	b.Upsert(Update{Room: RoomGlobal, UpdateType: "answer:submitted", Key: "a2", Payload: "other"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("batch never flushed")
	}

	mu.Lock()
	defer mu.Unlock()
	if flushCount != 1 {
		t.Fatalf("flush count = %d, want 1", flushCount)
	}
	if len(flushed) != 2 {
		t.Fatalf("expected 2 distinct keys after dedup, got %d", len(flushed))
	}
	if flushed["a1"] != "second" {
		t.Errorf("a1 = %v, want latest-wins value %q", flushed["a1"], "second")
	}
}

func TestBatcherSeparatesByRoomAndUpdateType(t *testing.T) {
	var mu sync.Mutex
	flushes := 0
	var wg sync.WaitGroup
	wg.Add(2)

	b := newBatcher(func(room, updateType string, items map[string]any) {
		mu.Lock()
		flushes++
		mu.Unlock()
		wg.Done()
	})

	b.Upsert(Update{Room: RoomGlobal, UpdateType: "answer:submitted", Key: "k", Payload: 1})
	b.Upsert(Update{Room: RoomLeaderboard, UpdateType: "answer:submitted", Key: "k", Payload: 1})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected two independent flushes, one per room")
	}

	mu.Lock()
	defer mu.Unlock()
	if flushes != 2 {
		t.Errorf("flushes = %d, want 2", flushes)
	}
}
