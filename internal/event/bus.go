package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
)

// Handler reacts to a session change.
type Handler func(ctx context.Context, e domain.SessionEvent) error

type subscriber struct {
	name    string
	handler Handler
}

// Bus delivers session events to every subscriber. Subscribers run
// concurrently and Publish returns once all of them have finished.
type Bus struct {
	mu          sync.RWMutex
	subscribers []subscriber
	logger      *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers h under name. Names only label logs.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, subscriber{name: name, handler: h})
}

// Publish fans e out to all subscribers and waits for them. A failing
// subscriber does not stop the others; the first error is returned.
func (b *Bus) Publish(ctx context.Context, e domain.SessionEvent) error {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subscribers...)
	b.mu.RUnlock()

	var g errgroup.Group
	for _, s := range subs {
		s := s
		g.Go(func() error {
			if err := s.handler(ctx, e); err != nil {
				b.logger.WarnContext(ctx, "session event subscriber failed",
					slog.String("subscriber", s.name),
					slog.String("event", string(e.Type)),
					slog.String("error", err.Error()),
				)
				return fmt.Errorf("%s: %w", s.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
