package state

import (
	"time"

	"github.com/ajitkushawaha/KwickLingoApp/internal/domain"
)

// StartStream creates a broadcast session with an empty viewer list.
// A colliding streamId overwrites the existing entry (caller-supplied
// ids are trusted to be unique); the replaced stream is returned so the
// caller can notify its orphaned viewers.
func (s *State) StartStream(streamID, streamerID, connID, title, description string) (domain.LiveStream, domain.LiveStream, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orphaned domain.LiveStream
	replaced := false
	if old, ok := s.streams[streamID]; ok {
		orphaned = snapshotStream(old)
		replaced = true
	}

	st := &domain.LiveStream{
		ID:          streamID,
		Title:       title,
		Description: description,
		StreamerID:  streamerID,
		ConnID:      connID,
		StartTime:   time.Now(),
	}
	s.streams[streamID] = st

	return snapshotStream(st), orphaned, replaced
}

// EndStream removes a broadcast session and returns its final snapshot
// so the caller can notify the viewers.
func (s *State) EndStream(streamID string) (domain.LiveStream, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.streams[streamID]
	if !ok {
		return domain.LiveStream{}, false
	}
	delete(s.streams, streamID)
	return snapshotStream(st), true
}

// Stream returns a snapshot of an active broadcast.
func (s *State) Stream(streamID string) (domain.LiveStream, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.streams[streamID]
	if !ok {
		return domain.LiveStream{}, false
	}
	return snapshotStream(st), true
}

// JoinResult describes the stream right after a viewer joined.
type JoinResult struct {
	Viewer domain.Viewer
	Stream domain.LiveStream
	IsNew  bool
}

// JoinStream appends a viewer to a stream's viewer list. A second join
// with the same viewerId replaces the stored connection instead of
// appending, so the viewer count never inflates.
func (s *State) JoinStream(streamID, viewerID, viewerName, connID string) (JoinResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.streams[streamID]
	if !ok {
		return JoinResult{}, false
	}

	for i, v := range st.Viewers {
		if v.ID == viewerID {
			st.Viewers[i].Name = viewerName
			st.Viewers[i].ConnID = connID
			return JoinResult{Viewer: st.Viewers[i], Stream: snapshotStream(st)}, true
		}
	}

	v := domain.Viewer{
		ID:       viewerID,
		Name:     viewerName,
		ConnID:   connID,
		JoinedAt: time.Now(),
	}
	st.Viewers = append(st.Viewers, v)
	return JoinResult{Viewer: v, Stream: snapshotStream(st), IsNew: true}, true
}

// LeaveStream removes the viewer with the given viewerId from a stream
// and returns the post-removal snapshot. It is a no-op if the stream or
// the viewer is unknown.
func (s *State) LeaveStream(streamID, viewerID string) (domain.LiveStream, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.streams[streamID]
	if !ok {
		return domain.LiveStream{}, false
	}

	for i, v := range st.Viewers {
		if v.ID == viewerID {
			st.Viewers = append(st.Viewers[:i], st.Viewers[i+1:]...)
			return snapshotStream(st), true
		}
	}
	return domain.LiveStream{}, false
}
