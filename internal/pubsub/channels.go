package pubsub

// ChannelAnnouncements carries stream lifecycle events between server
// instances.
const ChannelAnnouncements = "signaling:announcements"

// Event types.
const (
	EventStreamStarted = "stream_started"
	EventStreamEnded   = "stream_ended"
)

// StreamStartedAnnouncement is published when a broadcast starts.
type StreamStartedAnnouncement struct {
	StreamID    string `json:"stream_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StreamerID  string `json:"streamer_id"`
	StartedAt   int64  `json:"started_at"`
}

// StreamEndedAnnouncement is published when a broadcast ends.
type StreamEndedAnnouncement struct {
	StreamID string `json:"stream_id"`
}
