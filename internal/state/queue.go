package state

import (
	"time"

	"github.com/ajitkushawaha/KwickLingoApp/internal/domain"
)

// Enqueue appends a waiting client unless it is already queued.
// Returns false if the clientID was already present (idempotent join).
func (s *State) Enqueue(clientID, connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.queue {
		if e.ClientID == clientID {
			return false
		}
	}

	s.queue = append(s.queue, domain.QueueEntry{
		ClientID: clientID,
		ConnID:   connID,
		JoinedAt: time.Now(),
	})
	return true
}

// DequeueByConnection removes the entry belonging to a connection, if
// any. Used for explicit leave-queue and disconnect cleanup.
func (s *State) DequeueByConnection(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.dequeueByConnectionLocked(connID)
}

func (s *State) dequeueByConnectionLocked(connID string) bool {
	for i, e := range s.queue {
		if e.ConnID == connID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

// QueueLength returns the number of waiting clients.
func (s *State) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.queue)
}

// MatchNext pairs waiting clients strictly FIFO. While the queue holds
// two or more entries it pops the two oldest; if both connections are
// still alive it records the session edge and emits a Match (first
// popped = initiator). If either is stale, both entries go back to the
// front of the queue in their original order and matching stops for
// this cycle.
func (s *State) MatchNext(alive func(connID string) bool) []domain.Match {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []domain.Match
	for len(s.queue) >= 2 {
		a, b := s.queue[0], s.queue[1]
		s.queue = s.queue[2:]

		if !alive(a.ConnID) || !alive(b.ConnID) || !s.pairLocked(a.ConnID, b.ConnID) {
			s.queue = append([]domain.QueueEntry{a, b}, s.queue...)
			break
		}

		matches = append(matches, domain.Match{Initiator: a, Responder: b})
	}
	return matches
}
