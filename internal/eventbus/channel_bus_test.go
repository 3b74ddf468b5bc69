package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"swarmconsensus/core"
	"swarmconsensus/internal/eventbus"
)

func TestChannelBusDeliversToSubscriber(t *testing.T) {
	bus := eventbus.NewChannelBus()
	received := make(chan core.Envelope, 1)
	unsub, err := bus.Subscribe(context.Background(), core.Topic, func(env core.Envelope) {
		received <- env
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unsub()

	want := core.Envelope{Type: core.MessageQuestionCreated, QuestionID: "q1"}
	if err := bus.Publish(context.Background(), core.Topic, want); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	select {
	case got := <-received:
		if got.QuestionID != "q1" {
			t.Errorf("questionID = %q, want q1", got.QuestionID)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the published envelope")
	}
}

func TestChannelBusPublishWithNoSubscribersDoesNotBlock(t *testing.T) {
	bus := eventbus.NewChannelBus()
	done := make(chan struct{})
	go func() {
		_ = bus.Publish(context.Background(), core.Topic, core.Envelope{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish with no subscribers blocked")
	}
}

func TestChannelBusUnsubscribeStopsDelivery(t *testing.T) {
	bus := eventbus.NewChannelBus()
	var mu sync.Mutex
	count := 0
	unsub, _ := bus.Subscribe(context.Background(), core.Topic, func(core.Envelope) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	unsub()

	_ = bus.Publish(context.Background(), core.Topic, core.Envelope{})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Errorf("expected no deliveries after unsubscribe, got %d", count)
	}
}

func TestChannelBusMultipleSubscribersEachReceive(t *testing.T) {
	bus := eventbus.NewChannelBus()
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		_, _ = bus.Subscribe(context.Background(), core.Topic, func(core.Envelope) {
			wg.Done()
		})
	}
	_ = bus.Publish(context.Background(), core.Topic, core.Envelope{})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not all subscribers received the envelope")
	}
}
