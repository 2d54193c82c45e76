package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ajitkushawaha/KwickLingoApp/internal/hub"
	"github.com/ajitkushawaha/KwickLingoApp/internal/metrics"
	"github.com/ajitkushawaha/KwickLingoApp/internal/state"
)

// HTTPHandler serves the liveness and observability endpoints.
type HTTPHandler struct {
	state     *state.State
	hub       *hub.Hub
	metrics   *metrics.Metrics
	startedAt time.Time
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(st *state.State, h *hub.Hub, m *metrics.Metrics) *HTTPHandler {
	return &HTTPHandler{
		state:     st,
		hub:       h,
		metrics:   m,
		startedAt: time.Now(),
	}
}

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status            string `json:"status"`
	Timestamp         string `json:"timestamp"`
	UptimeSeconds     int64  `json:"uptime"`
	QueueLength       int    `json:"queueLength"`
	ActiveConnections int    `json:"activeConnections"`
}

// StatsResponse is the full store-size snapshot.
type StatsResponse struct {
	Connections       int   `json:"connections"`
	RegisteredClients int   `json:"registeredClients"`
	QueueLength       int   `json:"queueLength"`
	ActivePairs       int   `json:"activePairs"`
	ActiveStreams     int   `json:"activeStreams"`
	TotalViewers      int   `json:"totalViewers"`
	UptimeSeconds     int64 `json:"uptime"`
}

// GetHealth handles GET /health.
func (h *HTTPHandler) GetHealth(c *gin.Context) {
	snap := h.state.Snapshot()
	c.JSON(http.StatusOK, HealthResponse{
		Status:            "OK",
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds:     int64(time.Since(h.startedAt).Seconds()),
		QueueLength:       snap.QueueLength,
		ActiveConnections: snap.ActivePairs,
	})
}

// GetStats handles GET /stats.
func (h *HTTPHandler) GetStats(c *gin.Context) {
	snap := h.state.Snapshot()
	c.JSON(http.StatusOK, StatsResponse{
		Connections:       h.hub.Count(),
		RegisteredClients: snap.RegisteredClients,
		QueueLength:       snap.QueueLength,
		ActivePairs:       snap.ActivePairs,
		ActiveStreams:     snap.ActiveStreams,
		TotalViewers:      snap.TotalViewers,
		UptimeSeconds:     int64(time.Since(h.startedAt).Seconds()),
	})
}

// refreshGauges updates the prometheus gauges before a scrape.
func (h *HTTPHandler) refreshGauges() {
	snap := h.state.Snapshot()
	h.metrics.SetConnections(h.hub.Count())
	h.metrics.SetQueueLength(snap.QueueLength)
	h.metrics.SetActivePairs(snap.ActivePairs)
	h.metrics.SetActiveStreams(snap.ActiveStreams)
}

// RegisterRoutes registers the HTTP routes.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine, ws *WSHandler) {
	r.GET("/ws", ws.HandleWebSocket)
	r.GET("/health", h.GetHealth)
	r.GET("/stats", h.GetStats)
	r.GET("/metrics", gin.WrapH(h.metrics.Handler(h.refreshGauges)))
}
