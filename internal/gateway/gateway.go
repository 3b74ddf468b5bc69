package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"swarmconsensus/core"
)

// Gateway is the Fan-Out Gateway (C7): accepts gorilla/websocket
// connections behind a chi router, subscribes to the Bus (and may receive
// direct engine emissions), and batches/bypasses updates per §4.7.
type Gateway struct {
	bus core.Bus
	auth Authenticator

	connMu sync.RWMutex
	conns  map[string]*Connection

	rooms   *roomIndex
	batch   *batcher
	metrics *metrics

	upgrader websocket.Upgrader
	shutdown chan struct{}
	once     sync.Once
}

func New(bus core.Bus, auth Authenticator) *Gateway {
	g := &Gateway{
		bus:      bus,
		auth:     auth,
		conns:    make(map[string]*Connection),
		rooms:    newRoomIndex(),
		metrics:  newMetrics(),
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		shutdown: make(chan struct{}),
	}
	g.batch = newBatcher(g.flushBatch)
	return g
}

// Router returns the chi router exposing /ws, /healthz, and /metrics,
// matching SPEC_FULL.md §4.7's chosen transport.
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", g.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	reg := prometheus.NewRegistry()
	g.metrics.Register(reg)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r
}

// Start begins subscribing to the bus and running the heartbeat loop.
// Blocking calls run in background goroutines; Start returns immediately.
func (g *Gateway) Start(ctx context.Context) error {
	if g.bus != nil {
		unsub, err := g.bus.Subscribe(ctx, core.Topic, g.handleEnvelope)
		if err != nil {
			return err
		}
		go func() {
			<-ctx.Done()
			unsub()
		}()
	}
	go g.heartbeatLoop()
	return nil
}

// Shutdown closes every connection after announcing server:shutdown, and
// stops the heartbeat loop.
func (g *Gateway) Shutdown() {
	g.once.Do(func() {
		g.connMu.RLock()
		conns := make([]*Connection, 0, len(g.conns))
		for _, c := range g.conns {
			conns = append(conns, c)
		}
		g.connMu.RUnlock()
		for _, c := range conns {
			c.enqueue(OutboundMessage{Type: "server:shutdown"})
			g.disconnect(c)
		}
		close(g.shutdown)
	})
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.Warnf("gateway: upgrade failed: %v", err)
		return
	}
	c := newConnection(uuid.New().String(), conn)

	g.connMu.Lock()
	g.conns[c.id] = c
	g.connMu.Unlock()
	g.metrics.activeConnections.Inc()

	go c.writeLoop()
	g.readLoop(c)
}

func (g *Gateway) readLoop(c *Connection) {
	defer g.disconnect(c)
	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		c.touch()
		g.handleClientMessage(c, msg)
	}
}

func (g *Gateway) disconnect(c *Connection) {
	g.connMu.Lock()
	if _, ok := g.conns[c.id]; ok {
		delete(g.conns, c.id)
		g.connMu.Unlock()
	} else {
		g.connMu.Unlock()
		return
	}
	g.rooms.leaveAll(c)
	c.Close()
	g.metrics.activeConnections.Dec()
	if _, authed := c.Authenticated(); authed {
		g.metrics.authConnections.Dec()
	}
}

// clientMessage is the shape of client-to-server frames (§6 fan-out
// protocol): auth:agent, subscribe:question|leaderboard|global|agent,
// answer:submit passthrough.
type clientMessage struct {
	Type       string          `json:"type"`
	Token      string          `json:"token,omitempty"`
	QuestionID string          `json:"questionId,omitempty"`
	AgentID    string          `json:"agentId,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func (g *Gateway) handleClientMessage(c *Connection, msg clientMessage) {
	switch msg.Type {
	case "auth:agent":
		g.handleAuth(c, msg)
	case "subscribe:question":
		g.join(c, QuestionRoom(msg.QuestionID))
	case "subscribe:leaderboard":
		g.join(c, RoomLeaderboard)
	case "subscribe:global":
		g.join(c, RoomGlobal)
	case "subscribe:agent":
		g.handleSubscribeAgent(c, msg)
	case "answer:submit":
		// passthrough: the gateway does not validate or persist answers
		// (out of scope, §1); it only republishes so other subscribers
		// observe the same event.
		if g.bus != nil {
			_ = g.bus.Publish(context.Background(), core.Topic, core.Envelope{
				Type:       core.MessageAnswerSubmitted,
				QuestionID: msg.QuestionID,
				CreatedAt:  time.Now(),
				Payload:    msg.Payload,
			})
		}
	default:
		logrus.Debugf("gateway: unknown client message type %q", msg.Type)
	}
}

func (g *Gateway) handleAuth(c *Connection, msg clientMessage) {
	if g.auth == nil {
		c.enqueue(OutboundMessage{Type: "auth:failed"})
		return
	}
	cred, err := g.auth.Verify(msg.Token)
	if err != nil || !cred.Valid {
		c.enqueue(OutboundMessage{Type: "auth:failed"})
		return
	}
	c.setAgent(cred.Subject)
	g.metrics.authConnections.Inc()
	g.join(c, AgentRoom(cred.Subject))
	c.enqueue(OutboundMessage{Type: "auth:success", Payload: map[string]string{"agentId": cred.Subject}})
}

// handleSubscribeAgent binds c to agent:{agentId} (§4.7 Authentication): the
// connection must already be authenticated, and its bound subject must
// equal the requested agentId; a client cannot subscribe to another
// agent's private room just by naming it.
func (g *Gateway) handleSubscribeAgent(c *Connection, msg clientMessage) {
	subject, authed := c.Authenticated()
	if err := g.checkAgentBind(msg.AgentID, Credential{Subject: subject, Valid: authed}); err != nil {
		c.enqueue(OutboundMessage{Type: "subscribe:agent:failed", Payload: map[string]string{"reason": err.Error()}})
		return
	}
	g.join(c, AgentRoom(msg.AgentID))
	c.enqueue(OutboundMessage{Type: "subscribe:agent:success", Payload: map[string]string{"agentId": msg.AgentID}})
}

func (g *Gateway) join(c *Connection, room string) {
	g.rooms.join(room, c)
	c.markJoined(room)
}
