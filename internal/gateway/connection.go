package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// OutboundMessage is one server-to-client frame (§6 fan-out protocol
// messages). Type is one of auth:success|failed,
// subscribe:agent:success|failed, consensus:reached, consensus:failed,
// batch_update (which carries the batched answer:submitted, question:new,
// reputation:updated, leaderboard:updated and consensus:calculated
// updates), ping, server:shutdown.
type OutboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Connection is one subscriber's long-lived link, holding per-connection
// state: its room memberships, authenticated agent id (if any), and a
// buffered send queue drained by a dedicated writer goroutine so a slow
// reader never blocks a publisher.
type Connection struct {
	id      string
	conn    *websocket.Conn
	send    chan OutboundMessage

	mu        sync.Mutex
	agentID   string // "" until auth:agent succeeds
	rooms     map[string]struct{}
	lastAck   time.Time

	closeOnce sync.Once
	closed    chan struct{}
}

func newConnection(id string, conn *websocket.Conn) *Connection {
	return &Connection{
		id:      id,
		conn:    conn,
		send:    make(chan OutboundMessage, 128),
		rooms:   make(map[string]struct{}),
		lastAck: time.Now(),
		closed:  make(chan struct{}),
	}
}

// Authenticated reports whether auth:agent succeeded for this connection.
func (c *Connection) Authenticated() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentID, c.agentID != ""
}

func (c *Connection) setAgent(id string) {
	c.mu.Lock()
	c.agentID = id
	c.mu.Unlock()
}

func (c *Connection) joinedRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.rooms))
	for r := range c.rooms {
		out = append(out, r)
	}
	return out
}

func (c *Connection) markJoined(room string) {
	c.mu.Lock()
	c.rooms[room] = struct{}{}
	c.mu.Unlock()
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.lastAck = time.Now()
	c.mu.Unlock()
}

func (c *Connection) staleSince(ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastAck) > ttl
}

// enqueue best-effort sends msg; a full queue drops the message rather
// than blocking the caller (§4.6 fire-and-forget).
func (c *Connection) enqueue(msg OutboundMessage) {
	select {
	case c.send <- msg:
	default:
		logrus.Warnf("gateway: connection %s send queue full, dropping %s", c.id, msg.Type)
	}
}

func (c *Connection) writeLoop() {
	defer c.conn.Close()
	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				logrus.Debugf("gateway: write error on %s: %v", c.id, err)
				c.Close()
				return
			}
		}
	}
}

func (c *Connection) Close() {
	c.closeOnce.Do(func() { close(c.closed) })
}
