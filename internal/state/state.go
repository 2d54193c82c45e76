// Package state holds the four in-memory stores of the signaling server:
// the connection registry, the matchmaking queue, the session table and
// the live-stream registry. A single mutex guards all of them so that
// operations spanning more than one store (matching, disconnect cleanup)
// can never observe a torn state.
package state

import (
	"sync"

	"github.com/ajitkushawaha/KwickLingoApp/internal/domain"
)

// State is the shared mutable state of one server process. All entries
// live for the process lifetime at most; nothing is persisted.
type State struct {
	mu       sync.Mutex
	clients  map[string]string // clientID -> connID
	queue    []domain.QueueEntry
	partners map[string]string // connID -> partner connID, symmetric
	streams  map[string]*domain.LiveStream
}

// New returns an empty State.
func New() *State {
	return &State{
		clients:  make(map[string]string),
		partners: make(map[string]string),
		streams:  make(map[string]*domain.LiveStream),
	}
}

// Stats is a point-in-time snapshot used by the health and stats
// endpoints and the metrics gauges.
type Stats struct {
	RegisteredClients int
	QueueLength       int
	ActivePairs       int
	ActiveStreams     int
	TotalViewers      int
}

// Snapshot returns current store sizes.
func (s *State) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	viewers := 0
	for _, st := range s.streams {
		viewers += len(st.Viewers)
	}

	return Stats{
		RegisteredClients: len(s.clients),
		QueueLength:       len(s.queue),
		ActivePairs:       len(s.partners) / 2,
		ActiveStreams:     len(s.streams),
		TotalViewers:      viewers,
	}
}

// snapshotStream copies a stream, including its viewer list, so callers
// can read it outside the lock.
func snapshotStream(st *domain.LiveStream) domain.LiveStream {
	cp := *st
	cp.Viewers = make([]domain.Viewer, len(st.Viewers))
	copy(cp.Viewers, st.Viewers)
	return cp
}
