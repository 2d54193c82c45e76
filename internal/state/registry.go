package state

// Register maps a clientID to its connection, overwriting any prior
// mapping (reconnect semantics, last writer wins). It returns the
// replaced connection id, if any, so callers can log the collision; the
// old connection's queue and session entries are left for its own
// disconnect cleanup.
func (s *State) Register(clientID, connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, existed := s.clients[clientID]
	s.clients[clientID] = connID
	if existed && old != connID {
		return old, true
	}
	return "", false
}

// Resolve returns the connection id for a clientID.
func (s *State) Resolve(clientID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	connID, ok := s.clients[clientID]
	return connID, ok
}

// ClientOf returns the clientID owning a connection. Disconnect events
// carry only the connection id, so this is a scan by value.
func (s *State) ClientOf(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clientOfLocked(connID)
}

func (s *State) clientOfLocked(connID string) (string, bool) {
	for clientID, c := range s.clients {
		if c == connID {
			return clientID, true
		}
	}
	return "", false
}

// Unregister removes the mapping owned by a connection and returns the
// clientID it belonged to.
func (s *State) Unregister(connID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.unregisterLocked(connID)
}

func (s *State) unregisterLocked(connID string) (string, bool) {
	clientID, ok := s.clientOfLocked(connID)
	if !ok {
		return "", false
	}
	delete(s.clients, clientID)
	return clientID, true
}
