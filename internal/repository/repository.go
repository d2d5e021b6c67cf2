package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// SessionRepository persists the authenticated session across restarts. It
// is the only persisted state of the storefront.
type SessionRepository interface {
	// Load returns the stored session. A missing, unreadable or
	// out-of-version record yields an error matching apperrors.ErrNotFound.
	Load(ctx context.Context) (*domain.Session, error)

	// Save replaces the stored session.
	Save(ctx context.Context, session domain.Session) error

	// Clear removes the stored session. Clearing an absent session is not an error.
	Clear(ctx context.Context) error
}

// EnvelopeVersion is the current layout of a persisted session.
const EnvelopeVersion = 1

// envelope is the persisted record: {"version":1,"state":{...}}.
type envelope struct {
	Version int            `json:"version"`
	State   domain.Session `json:"state"`
}

// EncodeSession serializes a session into the versioned envelope.
func EncodeSession(s domain.Session) ([]byte, error) {
	data, err := json.Marshal(envelope{Version: EnvelopeVersion, State: s})
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return data, nil
}

// DecodeSession parses a persisted envelope. Corrupt data, another version
// or a record without token and user are all reported as not found.
func DecodeSession(data []byte) (*domain.Session, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal session: %v: %w", err, apperrors.ErrNotFound)
	}
	if env.Version != EnvelopeVersion {
		return nil, fmt.Errorf("session envelope version %d: %w", env.Version, apperrors.ErrNotFound)
	}
	if !env.State.Valid() {
		return nil, fmt.Errorf("incomplete session: %w", apperrors.ErrNotFound)
	}
	env.State.IsAuthenticated = true
	return &env.State, nil
}
