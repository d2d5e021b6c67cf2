// Package session holds the current authenticated identity in memory. The
// Holder is the single token source read by the API client on every request.
package session

import (
	"sync"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
)

// Holder is a concurrency-safe container for the current session.
type Holder struct {
	mu      sync.RWMutex
	current domain.Session
}

// NewHolder returns an empty (anonymous) holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Token returns the current bearer token, "" when anonymous.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Token
}

// UserID returns the current user's ID, "" when anonymous.
func (h *Holder) UserID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.UserID()
}

// Snapshot returns a copy of the current session.
func (h *Holder) Snapshot() domain.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

// Set replaces the session.
func (h *Holder) Set(s domain.Session) {
	s = s.Clone()
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
}

// SetUser replaces the user of the current session and marks it
// authenticated. It reports false when there is no token to attach the user
// to, for instance because the session was cleared concurrently.
func (h *Holder) SetUser(u *domain.User) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current.Token == "" {
		return false
	}
	if u != nil {
		cp := *u
		u = &cp
	}
	h.current.User = u
	h.current.IsAuthenticated = u != nil
	return true
}

// Clear drops the session.
func (h *Holder) Clear() {
	h.mu.Lock()
	h.current = domain.Session{}
	h.mu.Unlock()
}
