package session

import (
	"log"
	"sync"
)

const lockStripes = 64

// Store holds both session registries and keeps them exclusive per
// participant: entering one kind of session clears the other.
// Construct one per process and pass it to the handlers.
type Store struct {
	relay       *Registry[RelaySession]
	negotiation *Registry[NegotiationSession]
	stripes     [lockStripes]sync.Mutex
}

// NewStore creates an empty session store
func NewStore() *Store {
	log.Println("[SESSION] Session store initialized")
	return &Store{
		relay:       NewRegistry[RelaySession](),
		negotiation: NewRegistry[NegotiationSession](),
	}
}

// Lock serializes interactions of one participant. Different participants
// may share a stripe, so never hold two participants' locks at once.
func (s *Store) Lock(participantId int64) func() {
	idx := participantId % lockStripes
	if idx < 0 {
		idx = -idx
	}
	mu := &s.stripes[idx]
	mu.Lock()
	return mu.Unlock
}

// Relay returns the participant's relay session, if any
func (s *Store) Relay(participantId int64) (RelaySession, bool) {
	return s.relay.Get(participantId)
}

// Negotiation returns the participant's negotiation session, if any
func (s *Store) Negotiation(participantId int64) (NegotiationSession, bool) {
	return s.negotiation.Get(participantId)
}

// SwitchToRelay clears any negotiation session and opens a relay session
func (s *Store) SwitchToRelay(participantId int64, relaySession RelaySession) {
	if s.negotiation.Remove(participantId) {
		log.Printf("[SESSION] Negotiation session of user %d replaced by relay session", participantId)
	}
	s.relay.Set(participantId, relaySession)
	log.Printf("[SESSION] User %d relays to %d (deal %d)", participantId, relaySession.CounterpartID, relaySession.DealID)
}

// SwitchToNegotiation clears any relay session and sets the negotiation
// session. Used both on entry and on every workflow transition.
func (s *Store) SwitchToNegotiation(participantId int64, negotiationSession NegotiationSession) {
	if s.relay.Remove(participantId) {
		log.Printf("[SESSION] Relay session of user %d cleared by negotiation", participantId)
	}
	s.negotiation.Set(participantId, negotiationSession)
	log.Printf("[SESSION] User %d negotiation state %s (deal %d, role %s)",
		participantId, negotiationSession.State, negotiationSession.DealID, negotiationSession.Role)
}

// UpdateNegotiation changes the workflow state of a participant already in
// the workflow. Any relay session is still cleared.
func (s *Store) UpdateNegotiation(participantId int64, negotiationSession NegotiationSession) {
	s.relay.Remove(participantId)
	s.negotiation.Set(participantId, negotiationSession)
	log.Printf("[SESSION] User %d moved to %s (deal %d)", participantId, negotiationSession.State, negotiationSession.DealID)
}

// RemoveRelay removes the relay session and reports whether one existed
func (s *Store) RemoveRelay(participantId int64) bool {
	return s.relay.Remove(participantId)
}

// RemoveNegotiation removes the negotiation session and reports whether one existed
func (s *Store) RemoveNegotiation(participantId int64) bool {
	return s.negotiation.Remove(participantId)
}

// RemoveNegotiationFor removes the negotiation session only if it belongs to dealID
func (s *Store) RemoveNegotiationFor(participantId, dealID int64) bool {
	current, ok := s.negotiation.Get(participantId)
	if !ok || current.DealID != dealID {
		return false
	}
	return s.negotiation.Remove(participantId)
}

// Clear removes every session of the participant
func (s *Store) Clear(participantId int64) {
	s.relay.Remove(participantId)
	s.negotiation.Remove(participantId)
}

// Counts returns the number of active relay and negotiation sessions
func (s *Store) Counts() (relay int, negotiation int) {
	return s.relay.Len(), s.negotiation.Len()
}
