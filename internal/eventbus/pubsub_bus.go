package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/sirupsen/logrus"

	"swarmconsensus/core"
)

// PubSubBus is the cross-process Bus implementation, backed by
// go-libp2p-pubsub's GossipSub over topic core.Topic ("swarm:events").
// Grounded on the teacher's core/network.go Node.Broadcast/Subscribe pair:
// lazily-joined *pubsub.Topic per topic name, json-encoded payloads.
type PubSubBus struct {
	host   host.Host
	ps     *pubsub.PubSub
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

// NewPubSubBus starts a libp2p host listening on listenAddr and joins
// GossipSub over it.
func NewPubSubBus(listenAddr string) (*PubSubBus, error) {
	ctx, cancel := context.WithCancel(context.Background())

	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("eventbus: create host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		cancel()
		return nil, fmt.Errorf("eventbus: create pubsub: %w", err)
	}

	return &PubSubBus{
		host:   h,
		ps:     ps,
		ctx:    ctx,
		cancel: cancel,
		topics: make(map[string]*pubsub.Topic),
	}, nil
}

func (b *PubSubBus) joinTopic(name string) (*pubsub.Topic, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[name]; ok {
		return t, nil
	}
	t, err := b.ps.Join(name)
	if err != nil {
		return nil, fmt.Errorf("eventbus: join topic %s: %w", name, err)
	}
	b.topics[name] = t
	return t, nil
}

// Publish json-encodes envelope and publishes it on the gossipsub topic.
// Delivery is at-most-once and best-effort (§6 Event Bus Port).
func (b *PubSubBus) Publish(ctx context.Context, topic string, envelope core.Envelope) error {
	t, err := b.joinTopic(topic)
	if err != nil {
		return err
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("eventbus: marshal envelope: %w", err)
	}
	if err := t.Publish(ctx, data); err != nil {
		return fmt.Errorf("eventbus: publish topic %s: %w", topic, err)
	}
	return nil
}

// Subscribe joins topic and invokes handler for every decodable message.
// The gateway may also short-circuit engine emissions without going
// through the bus (Design Note 9), but the engine always publishes so
// other processes observe the same events.
func (b *PubSubBus) Subscribe(ctx context.Context, topic string, handler func(core.Envelope)) (func(), error) {
	t, err := b.joinTopic(topic)
	if err != nil {
		return nil, err
	}
	sub, err := t.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("eventbus: subscribe topic %s: %w", topic, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	go func() {
		for {
			msg, err := sub.Next(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					logrus.Warnf("eventbus: subscription next error: %v", err)
				}
				return
			}
			var env core.Envelope
			if err := json.Unmarshal(msg.Data, &env); err != nil {
				logrus.Warnf("eventbus: decode envelope: %v", err)
				continue
			}
			handler(env)
		}
	}()

	return func() { cancel(); sub.Cancel() }, nil
}

// Close tears down the libp2p host.
func (b *PubSubBus) Close() error {
	b.cancel()
	return b.host.Close()
}

var _ core.Bus = (*PubSubBus)(nil)
