package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/repository"
	"github.com/utafrali/EcommerceGo/storefront/pkg/database"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// DefaultKey is the key the session envelope is stored under.
const DefaultKey = "storefront:auth"

// SessionRepository implements repository.SessionRepository using Redis.
type SessionRepository struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	tracer database.Tracer
}

var _ repository.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a Redis-backed session repository. A zero ttl
// keeps the session until it is cleared.
func NewSessionRepository(client *redis.Client, key string, ttl time.Duration, slow time.Duration, logger *slog.Logger) *SessionRepository {
	if key == "" {
		key = DefaultKey
	}
	return &SessionRepository{
		client: client,
		key:    key,
		ttl:    ttl,
		tracer: database.Tracer{System: "redis", SlowThreshold: slow, Logger: logger},
	}
}

// Load retrieves the session envelope from Redis.
func (r *SessionRepository) Load(ctx context.Context) (_ *domain.Session, err error) {
	ctx, end := r.tracer.Trace(ctx, "GET", r.key)
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("session", r.key)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	return repository.DecodeSession(data)
}

// Save stores the session envelope.
func (r *SessionRepository) Save(ctx context.Context, session domain.Session) (err error) {
	ctx, end := r.tracer.Trace(ctx, "SET", r.key)
	defer func() { end(err) }()

	data, err := repository.EncodeSession(session)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Clear deletes the session key.
func (r *SessionRepository) Clear(ctx context.Context) (err error) {
	ctx, end := r.tracer.Trace(ctx, "DEL", r.key)
	defer func() { end(err) }()

	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
