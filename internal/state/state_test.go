package state

import (
	"testing"
)

func alwaysAlive(string) bool { return true }

func TestRegisterAndResolve(t *testing.T) {
	s := New()

	if _, replaced := s.Register("alice", "conn-1"); replaced {
		t.Error("first registration should not report a replacement")
	}

	connID, ok := s.Resolve("alice")
	if !ok || connID != "conn-1" {
		t.Errorf("expected alice to resolve to conn-1, got %q ok=%v", connID, ok)
	}

	clientID, ok := s.ClientOf("conn-1")
	if !ok || clientID != "alice" {
		t.Errorf("expected conn-1 to belong to alice, got %q ok=%v", clientID, ok)
	}
}

func TestRegisterReconnectLastWriterWins(t *testing.T) {
	s := New()

	s.Register("alice", "conn-1")
	old, replaced := s.Register("alice", "conn-2")
	if !replaced || old != "conn-1" {
		t.Errorf("expected reconnect to replace conn-1, got %q replaced=%v", old, replaced)
	}

	connID, _ := s.Resolve("alice")
	if connID != "conn-2" {
		t.Errorf("expected alice to resolve to conn-2 after reconnect, got %q", connID)
	}
}

func TestUnregister(t *testing.T) {
	s := New()
	s.Register("alice", "conn-1")

	clientID, ok := s.Unregister("conn-1")
	if !ok || clientID != "alice" {
		t.Errorf("expected unregister to return alice, got %q ok=%v", clientID, ok)
	}

	if _, ok := s.Resolve("alice"); ok {
		t.Error("alice should no longer resolve after unregister")
	}
	if _, ok := s.Unregister("conn-1"); ok {
		t.Error("second unregister should be a no-op")
	}
}

func TestEnqueueIdempotent(t *testing.T) {
	s := New()

	if !s.Enqueue("alice", "conn-1") {
		t.Error("first enqueue should succeed")
	}
	if s.Enqueue("alice", "conn-1") {
		t.Error("second enqueue of the same client should be ignored")
	}
	if got := s.QueueLength(); got != 1 {
		t.Errorf("expected queue length 1, got %d", got)
	}
}

func TestDequeueByConnection(t *testing.T) {
	s := New()
	s.Enqueue("alice", "conn-1")
	s.Enqueue("bob", "conn-2")

	if !s.DequeueByConnection("conn-1") {
		t.Error("expected dequeue of conn-1 to succeed")
	}
	if s.DequeueByConnection("conn-1") {
		t.Error("second dequeue should be a no-op")
	}
	if got := s.QueueLength(); got != 1 {
		t.Errorf("expected queue length 1, got %d", got)
	}
}

func TestMatchNextFIFO(t *testing.T) {
	s := New()
	s.Enqueue("alice", "conn-a")
	s.Enqueue("bob", "conn-b")
	s.Enqueue("carol", "conn-c")

	matches := s.MatchNext(alwaysAlive)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Initiator.ClientID != "alice" || matches[0].Responder.ClientID != "bob" {
		t.Errorf("expected alice/bob matched first, got %s/%s",
			matches[0].Initiator.ClientID, matches[0].Responder.ClientID)
	}
	if got := s.QueueLength(); got != 1 {
		t.Errorf("expected carol still queued, queue length %d", got)
	}

	// A fourth client pairs with the longest waiter, not a newer one.
	s.Enqueue("dave", "conn-d")
	matches = s.MatchNext(alwaysAlive)
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Initiator.ClientID != "carol" || matches[0].Responder.ClientID != "dave" {
		t.Errorf("expected carol/dave matched, got %s/%s",
			matches[0].Initiator.ClientID, matches[0].Responder.ClientID)
	}
}

func TestMatchNextPairsAllWaiting(t *testing.T) {
	s := New()
	s.Enqueue("a", "conn-a")
	s.Enqueue("b", "conn-b")
	s.Enqueue("c", "conn-c")
	s.Enqueue("d", "conn-d")

	matches := s.MatchNext(alwaysAlive)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if got := s.QueueLength(); got != 0 {
		t.Errorf("expected empty queue, got length %d", got)
	}
	if got := s.PairedConnections(); got != 4 {
		t.Errorf("expected 4 paired connections, got %d", got)
	}
}

func TestMatchNextStaleEntriesReturnToFront(t *testing.T) {
	s := New()
	s.Enqueue("alice", "conn-a")
	s.Enqueue("bob", "conn-b")
	s.Enqueue("carol", "conn-c")

	// Bob's connection is gone; neither popped entry may be lost and
	// order must be preserved.
	matches := s.MatchNext(func(connID string) bool { return connID != "conn-b" })
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %d", len(matches))
	}
	if got := s.QueueLength(); got != 3 {
		t.Fatalf("expected all 3 entries back in the queue, got %d", got)
	}

	// With everyone alive again the original order still holds.
	matches = s.MatchNext(alwaysAlive)
	if len(matches) != 1 || matches[0].Initiator.ClientID != "alice" || matches[0].Responder.ClientID != "bob" {
		t.Errorf("expected alice/bob matched after recovery, got %+v", matches)
	}
}

func TestPairSymmetry(t *testing.T) {
	s := New()

	if !s.Pair("conn-a", "conn-b") {
		t.Fatal("expected pairing to succeed")
	}

	p, ok := s.PartnerOf("conn-a")
	if !ok || p != "conn-b" {
		t.Errorf("expected conn-a paired with conn-b, got %q ok=%v", p, ok)
	}
	p, ok = s.PartnerOf("conn-b")
	if !ok || p != "conn-a" {
		t.Errorf("expected conn-b paired with conn-a, got %q ok=%v", p, ok)
	}
}

func TestPairRejectsDoubleBooking(t *testing.T) {
	s := New()
	s.Pair("conn-a", "conn-b")

	if s.Pair("conn-a", "conn-c") {
		t.Error("a paired connection must not enter a second pairing")
	}
	if s.Pair("conn-c", "conn-b") {
		t.Error("a paired connection must not enter a second pairing")
	}
	if s.Pair("conn-c", "conn-c") {
		t.Error("a connection must not pair with itself")
	}
}

func TestUnpairRemovesBothEdges(t *testing.T) {
	s := New()
	s.Pair("conn-a", "conn-b")

	partner, ok := s.Unpair("conn-a")
	if !ok || partner != "conn-b" {
		t.Errorf("expected unpair to return conn-b, got %q ok=%v", partner, ok)
	}
	if _, ok := s.PartnerOf("conn-b"); ok {
		t.Error("reverse edge should be gone after unpair")
	}
	if _, ok := s.Unpair("conn-a"); ok {
		t.Error("second unpair should be a no-op")
	}
}

func TestJoinStreamDedupesByViewerID(t *testing.T) {
	s := New()
	s.StartStream("stream-1", "streamer", "conn-s", "title", "desc")

	res, ok := s.JoinStream("stream-1", "v1", "Viewer One", "conn-v1")
	if !ok || !res.IsNew {
		t.Fatalf("expected new viewer, got ok=%v isNew=%v", ok, res.IsNew)
	}

	// Rejoin with a fresh connection replaces, never duplicates.
	res, ok = s.JoinStream("stream-1", "v1", "Viewer One", "conn-v1b")
	if !ok || res.IsNew {
		t.Fatalf("expected rejoin to reuse the entry, got ok=%v isNew=%v", ok, res.IsNew)
	}
	if res.Stream.ViewerCount() != 1 {
		t.Errorf("expected viewer count 1 after rejoin, got %d", res.Stream.ViewerCount())
	}
	if res.Viewer.ConnID != "conn-v1b" {
		t.Errorf("expected viewer connection updated, got %q", res.Viewer.ConnID)
	}
}

func TestJoinStreamUnknownStream(t *testing.T) {
	s := New()
	if _, ok := s.JoinStream("nope", "v1", "Viewer", "conn-v1"); ok {
		t.Error("join of an unknown stream must fail")
	}
}

func TestLeaveStream(t *testing.T) {
	s := New()
	s.StartStream("stream-1", "streamer", "conn-s", "title", "desc")
	s.JoinStream("stream-1", "v1", "Viewer One", "conn-v1")
	s.JoinStream("stream-1", "v2", "Viewer Two", "conn-v2")

	st, ok := s.LeaveStream("stream-1", "v1")
	if !ok {
		t.Fatal("expected leave to succeed")
	}
	if st.ViewerCount() != 1 {
		t.Errorf("expected viewer count 1, got %d", st.ViewerCount())
	}
	if _, ok := s.LeaveStream("stream-1", "v1"); ok {
		t.Error("second leave of the same viewer should be a no-op")
	}
	if _, ok := s.LeaveStream("nope", "v2"); ok {
		t.Error("leave of an unknown stream should be a no-op")
	}
}

func TestStartStreamCollisionReturnsOrphans(t *testing.T) {
	s := New()
	s.StartStream("stream-1", "old-streamer", "conn-old", "old", "")
	s.JoinStream("stream-1", "v1", "Viewer One", "conn-v1")

	st, orphaned, replaced := s.StartStream("stream-1", "new-streamer", "conn-new", "new", "")
	if !replaced {
		t.Fatal("expected collision to report a replacement")
	}
	if orphaned.StreamerID != "old-streamer" || orphaned.ViewerCount() != 1 {
		t.Errorf("expected orphaned snapshot of the old stream, got %+v", orphaned)
	}
	if st.StreamerID != "new-streamer" || st.ViewerCount() != 0 {
		t.Errorf("expected fresh stream with no viewers, got %+v", st)
	}
}

func TestEndStream(t *testing.T) {
	s := New()
	s.StartStream("stream-1", "streamer", "conn-s", "title", "")
	s.JoinStream("stream-1", "v1", "Viewer One", "conn-v1")

	st, ok := s.EndStream("stream-1")
	if !ok || st.ViewerCount() != 1 {
		t.Fatalf("expected final snapshot with 1 viewer, got ok=%v %+v", ok, st)
	}
	if _, ok := s.Stream("stream-1"); ok {
		t.Error("stream should be gone after end")
	}
	if _, ok := s.EndStream("stream-1"); ok {
		t.Error("ending an unknown stream should fail")
	}
}

func TestCleanupConnectionPairedAndQueued(t *testing.T) {
	s := New()
	s.Register("alice", "conn-a")
	s.Register("bob", "conn-b")
	s.Enqueue("alice", "conn-a")
	s.DequeueByConnection("conn-a")
	s.Pair("conn-a", "conn-b")
	s.Enqueue("carol", "conn-c")

	report := s.CleanupConnection("conn-a")

	if !report.HadClient || report.ClientID != "alice" {
		t.Errorf("expected cleanup to unregister alice, got %+v", report)
	}
	if !report.HadPartner || report.PartnerConn != "conn-b" {
		t.Errorf("expected cleanup to unpair conn-b, got %+v", report)
	}
	if report.WasQueued {
		t.Error("alice was not queued at disconnect time")
	}
	if _, ok := s.Resolve("alice"); ok {
		t.Error("alice must not resolve after cleanup")
	}
	if _, ok := s.PartnerOf("conn-b"); ok {
		t.Error("bob must be unpaired after cleanup")
	}
	if got := s.QueueLength(); got != 1 {
		t.Errorf("unrelated queue entries must survive, got length %d", got)
	}
}

func TestCleanupConnectionStreamer(t *testing.T) {
	s := New()
	s.Register("streamer", "conn-s")
	s.StartStream("stream-1", "streamer", "conn-s", "title", "")
	s.JoinStream("stream-1", "v1", "Viewer One", "conn-v1")

	report := s.CleanupConnection("conn-s")

	if !report.EndedOwnStream || report.EndedStream.ID != "stream-1" {
		t.Fatalf("expected cleanup to end the owned stream, got %+v", report)
	}
	if report.EndedStream.ViewerCount() != 1 {
		t.Errorf("expected final snapshot with 1 viewer, got %d", report.EndedStream.ViewerCount())
	}
	if _, ok := s.Stream("stream-1"); ok {
		t.Error("stream must be gone after streamer cleanup")
	}
}

func TestCleanupConnectionViewer(t *testing.T) {
	s := New()
	s.StartStream("stream-1", "streamer", "conn-s", "title", "")
	s.JoinStream("stream-1", "v1", "Viewer One", "conn-v1")
	s.JoinStream("stream-1", "v2", "Viewer Two", "conn-v2")

	report := s.CleanupConnection("conn-v1")

	if len(report.LeftStreams) != 1 {
		t.Fatalf("expected 1 viewer removal, got %d", len(report.LeftStreams))
	}
	removal := report.LeftStreams[0]
	if removal.ViewerID != "v1" || removal.Stream.ViewerCount() != 1 {
		t.Errorf("expected v1 removed leaving 1 viewer, got %+v", removal)
	}

	st, _ := s.Stream("stream-1")
	if st.ViewerCount() != 1 {
		t.Errorf("expected stream to keep the other viewer, got %d", st.ViewerCount())
	}
}

func TestSnapshot(t *testing.T) {
	s := New()
	s.Register("alice", "conn-a")
	s.Register("bob", "conn-b")
	s.Enqueue("carol", "conn-c")
	s.Pair("conn-a", "conn-b")
	s.StartStream("stream-1", "streamer", "conn-s", "title", "")
	s.JoinStream("stream-1", "v1", "Viewer One", "conn-v1")

	snap := s.Snapshot()
	if snap.RegisteredClients != 2 {
		t.Errorf("expected 2 registered clients, got %d", snap.RegisteredClients)
	}
	if snap.QueueLength != 1 {
		t.Errorf("expected queue length 1, got %d", snap.QueueLength)
	}
	if snap.ActivePairs != 1 {
		t.Errorf("expected 1 active pair, got %d", snap.ActivePairs)
	}
	if snap.ActiveStreams != 1 || snap.TotalViewers != 1 {
		t.Errorf("expected 1 stream with 1 viewer, got %d/%d", snap.ActiveStreams, snap.TotalViewers)
	}
}
