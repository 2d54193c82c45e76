package domain

import "time"

// QueueEntry is one waiting client in the matchmaking queue.
// Insertion order is matching priority.
type QueueEntry struct {
	ClientID string
	ConnID   string
	JoinedAt time.Time
}

// Match pairs two dequeued entries. The initiator side creates the
// WebRTC offer.
type Match struct {
	Initiator QueueEntry
	Responder QueueEntry
}

// Viewer is one watcher of a live stream.
type Viewer struct {
	ID       string
	Name     string
	ConnID   string
	JoinedAt time.Time
}

// ViewerInfo is the wire representation of a Viewer.
type ViewerInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joinedAt"`
}

// Info returns the wire representation of the viewer.
func (v Viewer) Info() ViewerInfo {
	return ViewerInfo{ID: v.ID, Name: v.Name, JoinedAt: v.JoinedAt.Unix()}
}

// LiveStream is one active broadcast session. Viewers are kept in join
// order; the viewer count is always len(Viewers).
type LiveStream struct {
	ID          string
	Title       string
	Description string
	StreamerID  string
	ConnID      string
	StartTime   time.Time
	Viewers     []Viewer
}

// ViewerCount returns the current number of viewers.
func (s *LiveStream) ViewerCount() int {
	return len(s.Viewers)
}

// ViewerByID returns the viewer with the given id, if present.
func (s *LiveStream) ViewerByID(viewerID string) (Viewer, bool) {
	for _, v := range s.Viewers {
		if v.ID == viewerID {
			return v, true
		}
	}
	return Viewer{}, false
}

// ViewerConnIDs returns the connection ids of all current viewers.
func (s *LiveStream) ViewerConnIDs() []string {
	ids := make([]string, 0, len(s.Viewers))
	for _, v := range s.Viewers {
		ids = append(ids, v.ConnID)
	}
	return ids
}
