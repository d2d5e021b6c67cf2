// Package file stores the session envelope in a local JSON file.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/repository"
	"github.com/utafrali/EcommerceGo/storefront/pkg/database"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// SessionRepository implements repository.SessionRepository on a single file.
// Writes go to a temporary sibling that is renamed over the target, so a
// crash never leaves a half-written envelope behind.
type SessionRepository struct {
	mu     sync.Mutex
	path   string
	tracer database.Tracer
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a repository backed by path. The parent
// directory is created on first save.
func NewSessionRepository(path string, slow time.Duration, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{
		path:   path,
		tracer: database.Tracer{System: "file", SlowThreshold: slow, Logger: logger},
	}
}

// Path returns the backing file.
func (r *SessionRepository) Path() string {
	return r.path
}

// Load reads and decodes the session file.
func (r *SessionRepository) Load(ctx context.Context) (_ *domain.Session, err error) {
	_, end := r.tracer.Trace(ctx, "READ", r.path)
	defer func() { end(err) }()

	r.mu.Lock()
	data, err := os.ReadFile(r.path)
	r.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFound("session", r.path)
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	return repository.DecodeSession(data)
}

// Save writes the session envelope with owner-only permissions.
func (r *SessionRepository) Save(ctx context.Context, session domain.Session) (err error) {
	_, end := r.tracer.Trace(ctx, "WRITE", r.path)
	defer func() { end(err) }()

	data, err := repository.EncodeSession(session)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create session temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}

// Clear removes the session file.
func (r *SessionRepository) Clear(ctx context.Context) (err error) {
	_, end := r.tracer.Trace(ctx, "REMOVE", r.path)
	defer func() { end(err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
