package gateway

import "time"

const (
	pingInterval = 30 * time.Second
	staleTTL     = 5 * time.Minute
)

// heartbeatLoop pings every connection periodically and evicts any that
// have not acknowledged within staleTTL (§4.7 Heartbeats).
func (g *Gateway) heartbeatLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-g.shutdown:
			return
		case <-ticker.C:
			g.pingAll()
		}
	}
}

func (g *Gateway) pingAll() {
	g.connMu.RLock()
	conns := make([]*Connection, 0, len(g.conns))
	for _, c := range g.conns {
		conns = append(conns, c)
	}
	g.connMu.RUnlock()

	for _, c := range conns {
		if c.staleSince(staleTTL) {
			g.disconnect(c)
			continue
		}
		c.enqueue(OutboundMessage{Type: "ping"})
	}
}
