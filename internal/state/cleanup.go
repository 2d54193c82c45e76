package state

import "github.com/ajitkushawaha/KwickLingoApp/internal/domain"

// ViewerRemoval records a viewer pruned from a stream during cleanup.
// Stream is the post-removal snapshot.
type ViewerRemoval struct {
	Stream   domain.LiveStream
	ViewerID string
}

// CleanupReport describes everything a disconnect unwound, so the
// caller can send the matching notifications.
type CleanupReport struct {
	ClientID  string
	HadClient bool

	WasQueued bool

	PartnerConn string
	HadPartner  bool

	EndedStream    domain.LiveStream
	EndedOwnStream bool
	LeftStreams    []ViewerRemoval
}

// CleanupConnection unwinds every trace of a connection under a single
// lock acquisition: registry mapping first (nothing may resolve the
// dead connection afterwards), then owned or watched streams, then the
// queue entry, then the session edge.
func (s *State) CleanupConnection(connID string) CleanupReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	var report CleanupReport

	report.ClientID, report.HadClient = s.unregisterLocked(connID)

	for id, st := range s.streams {
		if st.ConnID == connID {
			delete(s.streams, id)
			report.EndedStream = snapshotStream(st)
			report.EndedOwnStream = true
			continue
		}
		for i, v := range st.Viewers {
			if v.ConnID == connID {
				st.Viewers = append(st.Viewers[:i], st.Viewers[i+1:]...)
				report.LeftStreams = append(report.LeftStreams, ViewerRemoval{
					Stream:   snapshotStream(st),
					ViewerID: v.ID,
				})
				break
			}
		}
	}

	report.WasQueued = s.dequeueByConnectionLocked(connID)

	report.PartnerConn, report.HadPartner = s.unpairLocked(connID)

	return report
}
