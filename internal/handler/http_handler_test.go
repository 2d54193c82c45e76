package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ajitkushawaha/KwickLingoApp/internal/config"
	"github.com/ajitkushawaha/KwickLingoApp/internal/hub"
	"github.com/ajitkushawaha/KwickLingoApp/internal/metrics"
	"github.com/ajitkushawaha/KwickLingoApp/internal/state"
)

func newTestRouter(st *state.State) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := hub.NewHub(config.WebSocketConfig{})
	m := metrics.New()
	httpHandler := NewHTTPHandler(st, h, m)
	wsHandler := NewWSHandler(h, nil, m)

	r := gin.New()
	httpHandler.RegisterRoutes(r, wsHandler)
	return r
}

func TestGetHealth(t *testing.T) {
	st := state.New()
	st.Enqueue("alice", "conn-a")
	st.Pair("conn-b", "conn-c")
	r := newTestRouter(st)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp.Status != "OK" {
		t.Errorf("expected status OK, got %q", resp.Status)
	}
	if resp.QueueLength != 1 {
		t.Errorf("expected queue length 1, got %d", resp.QueueLength)
	}
	if resp.ActiveConnections != 1 {
		t.Errorf("expected 1 active pairing, got %d", resp.ActiveConnections)
	}
	if resp.Timestamp == "" {
		t.Error("expected a timestamp")
	}
}

func TestGetStats(t *testing.T) {
	st := state.New()
	st.Register("alice", "conn-a")
	st.Register("bob", "conn-b")
	st.Pair("conn-a", "conn-b")
	st.StartStream("stream-1", "streamer", "conn-s", "title", "")
	st.JoinStream("stream-1", "v1", "Viewer One", "conn-v1")
	r := newTestRouter(st)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp StatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode stats response: %v", err)
	}
	if resp.RegisteredClients != 2 {
		t.Errorf("expected 2 registered clients, got %d", resp.RegisteredClients)
	}
	if resp.ActivePairs != 1 {
		t.Errorf("expected 1 active pair, got %d", resp.ActivePairs)
	}
	if resp.ActiveStreams != 1 || resp.TotalViewers != 1 {
		t.Errorf("expected 1 stream with 1 viewer, got %d/%d", resp.ActiveStreams, resp.TotalViewers)
	}
}

func TestGetMetrics(t *testing.T) {
	st := state.New()
	st.Enqueue("alice", "conn-a")
	r := newTestRouter(st)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "signaling_queue_length 1") {
		t.Errorf("expected queue gauge to reflect the store, got:\n%s", body)
	}
	if !strings.Contains(body, "signaling_connections") {
		t.Error("expected connection gauge in scrape output")
	}
}
