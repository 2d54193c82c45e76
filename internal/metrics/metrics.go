package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the signaling server.
type Metrics struct {
	registry        *prometheus.Registry
	connections     prometheus.Gauge
	queueLength     prometheus.Gauge
	activePairs     prometheus.Gauge
	activeStreams   prometheus.Gauge
	matchesTotal    prometheus.Counter
	relayedTotal    prometheus.Counter
	streamsStarted  prometheus.Counter
	giftsTotal      prometheus.Counter
	errorsTotal     prometheus.Counter
}

// New creates and registers Prometheus metrics for the server.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	connections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_connections",
		Help: "Number of live WebSocket connections",
	})
	queueLength := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_queue_length",
		Help: "Number of clients waiting in the matchmaking queue",
	})
	activePairs := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_active_pairs",
		Help: "Number of active peer-to-peer pairings",
	})
	activeStreams := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "signaling_active_streams",
		Help: "Number of active live streams",
	})
	matchesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signaling_matches_total",
		Help: "Total number of pairings formed",
	})
	relayedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signaling_relayed_messages_total",
		Help: "Total number of signaling messages relayed to a peer",
	})
	streamsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signaling_streams_started_total",
		Help: "Total number of live streams started",
	})
	giftsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signaling_gifts_total",
		Help: "Total number of gifts relayed",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "signaling_errors_total",
		Help: "Total number of malformed or undeliverable messages",
	})

	registry.MustRegister(
		connections,
		queueLength,
		activePairs,
		activeStreams,
		matchesTotal,
		relayedTotal,
		streamsStarted,
		giftsTotal,
		errorsTotal,
	)

	return &Metrics{
		registry:       registry,
		connections:    connections,
		queueLength:    queueLength,
		activePairs:    activePairs,
		activeStreams:  activeStreams,
		matchesTotal:   matchesTotal,
		relayedTotal:   relayedTotal,
		streamsStarted: streamsStarted,
		giftsTotal:     giftsTotal,
		errorsTotal:    errorsTotal,
	}
}

// SetConnections sets the live connection gauge.
func (m *Metrics) SetConnections(n int) {
	m.connections.Set(float64(n))
}

// SetQueueLength sets the matchmaking queue gauge.
func (m *Metrics) SetQueueLength(n int) {
	m.queueLength.Set(float64(n))
}

// SetActivePairs sets the active pairing gauge.
func (m *Metrics) SetActivePairs(n int) {
	m.activePairs.Set(float64(n))
}

// SetActiveStreams sets the active stream gauge.
func (m *Metrics) SetActiveStreams(n int) {
	m.activeStreams.Set(float64(n))
}

// IncMatches increments the pairing counter.
func (m *Metrics) IncMatches() {
	m.matchesTotal.Inc()
}

// IncRelayed increments the relayed message counter.
func (m *Metrics) IncRelayed() {
	m.relayedTotal.Inc()
}

// IncStreamsStarted increments the streams started counter.
func (m *Metrics) IncStreamsStarted() {
	m.streamsStarted.Inc()
}

// IncGifts increments the gift counter.
func (m *Metrics) IncGifts() {
	m.giftsTotal.Inc()
}

// IncErrors increments the error counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
