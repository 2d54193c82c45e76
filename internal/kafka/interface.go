package kafka

import "context"

// SignalingEvent records a matchmaking or live-stream state change for
// downstream analytics consumers.
type SignalingEvent struct {
	Type      string `json:"type"`
	ClientA   string `json:"client_a,omitempty"`
	ClientB   string `json:"client_b,omitempty"`
	StreamID  string `json:"stream_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Event types
const (
	EventMatchCreated  = "match_created"
	EventMatchEnded    = "match_ended"
	EventStreamStarted = "stream_started"
	EventStreamStopped = "stream_stopped"
)

// Match end / stream stop reasons
const (
	ReasonSkip       = "skip"
	ReasonExplicit   = "explicit"
	ReasonDisconnect = "disconnect"
)

// EventProducer defines the interface for producing signaling events.
// Implementations must be safe to skip entirely; the server runs
// without one.
type EventProducer interface {
	ProduceMatchCreated(ctx context.Context, clientA, clientB string) error
	ProduceMatchEnded(ctx context.Context, clientA, clientB, reason string) error
	ProduceStreamStarted(ctx context.Context, streamID, streamerID string) error
	ProduceStreamStopped(ctx context.Context, streamID, streamerID, reason string) error
	Close() error
}
