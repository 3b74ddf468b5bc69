package gateway

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats exposes the gateway's observability contract (§4.7 Stats): active
// connections, authenticated-agent connections, rooms occupied,
// messages-per-second.
type Stats struct {
	ActiveConnections int
	AuthenticatedConnections int
	RoomsOccupied     int
	MessagesPerSecond float64
}

// metrics backs Stats with prometheus gauges/counters, mirroring the
// teacher's indirect prometheus/client_golang dependency (previously
// unused in the teacher; wired here).
type metrics struct {
	activeConnections prometheus.Gauge
	authConnections   prometheus.Gauge
	roomsOccupied     prometheus.Gauge
	messagesTotal     prometheus.Counter

	msgCounter int64
	windowStart time.Time
}

func newMetrics() *metrics {
	m := &metrics{
		activeConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swarmconsensus", Subsystem: "gateway", Name: "active_connections",
			Help: "Current number of active fan-out connections.",
		}),
		authConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swarmconsensus", Subsystem: "gateway", Name: "authenticated_connections",
			Help: "Current number of authenticated-agent connections.",
		}),
		roomsOccupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swarmconsensus", Subsystem: "gateway", Name: "rooms_occupied",
			Help: "Current number of occupied rooms.",
		}),
		messagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swarmconsensus", Subsystem: "gateway", Name: "messages_total",
			Help: "Total messages sent to subscribers.",
		}),
		windowStart: time.Now(),
	}
	return m
}

// Register registers the gateway's collectors with reg.
func (m *metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.activeConnections, m.authConnections, m.roomsOccupied, m.messagesTotal)
}

func (m *metrics) recordMessage() {
	m.messagesTotal.Inc()
	atomic.AddInt64(&m.msgCounter, 1)
}

func (m *metrics) messagesPerSecond() float64 {
	elapsed := time.Since(m.windowStart).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.msgCounter)) / elapsed
}
