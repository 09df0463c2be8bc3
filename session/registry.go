// Package session keeps the ephemeral per-participant routing and
// negotiation state. Nothing here survives a restart.
package session

import (
	"sync"
)

// Registry maps a participant id to at most one session value. Every
// operation is atomic for a single key; there is no cross-key atomicity.
type Registry[T any] struct {
	mu      sync.RWMutex
	entries map[int64]T
}

// NewRegistry creates an empty registry
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[int64]T),
	}
}

// Get returns the session for participantId, if any
func (r *Registry[T]) Get(participantId int64) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.entries[participantId]
	return value, ok
}

// Set unconditionally replaces the session for participantId
func (r *Registry[T]) Set(participantId int64, value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[participantId] = value
}

// Remove deletes the session and reports whether one existed
func (r *Registry[T]) Remove(participantId int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[participantId]; !ok {
		return false
	}
	delete(r.entries, participantId)
	return true
}

// Len returns the number of active sessions
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
