// Package pubsub fans live-stream announcements out across server
// instances over Redis, so clients connected anywhere see every
// broadcast start and end.
package pubsub

import (
	"context"
	"encoding/json"
	"time"
)

// Event represents a message published to the event bus.
type Event struct {
	Type      string          `json:"type"`
	Origin    string          `json:"origin"` // publishing instance id, for echo suppression
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType, origin string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Origin:    origin,
		Payload:   data,
		Timestamp: time.Now(),
	}, nil
}

// UnmarshalPayload unmarshals the event payload into the given struct.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// PubSub publishes and subscribes to announcement events.
type PubSub interface {
	Publish(ctx context.Context, channel string, event *Event) error
	Subscribe(ctx context.Context, channel string) (<-chan *Event, error)
	Close() error
}
