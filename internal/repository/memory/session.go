// Package memory keeps the session envelope in process memory. It backs
// tests and deployments that do not want a session to survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/repository"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// SessionRepository implements repository.SessionRepository in memory. The
// session is held in its encoded envelope so it goes through the same
// version checks as the durable backends.
type SessionRepository struct {
	mu   sync.Mutex
	data []byte
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository returns an empty repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{}
}

// Load decodes the held envelope.
func (r *SessionRepository) Load(_ context.Context) (*domain.Session, error) {
	r.mu.Lock()
	data := r.data
	r.mu.Unlock()

	if data == nil {
		return nil, apperrors.NotFound("session", "memory")
	}
	return repository.DecodeSession(data)
}

// Save encodes and holds the session.
func (r *SessionRepository) Save(_ context.Context, session domain.Session) error {
	data, err := repository.EncodeSession(session)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}

// Clear drops the held session.
func (r *SessionRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	r.data = nil
	r.mu.Unlock()
	return nil
}

// Raw returns the held envelope bytes, nil when empty.
func (r *SessionRepository) Raw() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.data...)
}

// SetRaw replaces the held envelope bytes verbatim.
func (r *SessionRepository) SetRaw(data []byte) {
	r.mu.Lock()
	r.data = append([]byte(nil), data...)
	r.mu.Unlock()
}
