package state

// Pair installs both directed edges for a new session. A connection may
// hold at most one active edge; if either side is already paired the
// call is a no-op and returns false.
func (s *State) Pair(connA, connB string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pairLocked(connA, connB)
}

func (s *State) pairLocked(connA, connB string) bool {
	if connA == connB {
		return false
	}
	if _, taken := s.partners[connA]; taken {
		return false
	}
	if _, taken := s.partners[connB]; taken {
		return false
	}
	s.partners[connA] = connB
	s.partners[connB] = connA
	return true
}

// PartnerOf returns the connection currently paired with connID.
func (s *State) PartnerOf(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partners[connID]
	return p, ok
}

// Unpair removes both directed edges for the pair connID belongs to and
// returns the former partner so the caller can notify it. Calling it on
// an unpaired connection is a no-op.
func (s *State) Unpair(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.unpairLocked(connID)
}

func (s *State) unpairLocked(connID string) (string, bool) {
	partner, ok := s.partners[connID]
	if !ok {
		return "", false
	}
	delete(s.partners, connID)
	delete(s.partners, partner)
	return partner, true
}

// PairedConnections returns the number of connections holding a session
// edge. Active pairings are half of this.
func (s *State) PairedConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.partners)
}
