package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	pkgkafka "github.com/utafrali/EcommerceGo/storefront/pkg/kafka"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// Aggregate type for session events.
const AggregateTypeSession = "session"

// Source identifier for events originating from the storefront.
const SourceStorefront = "storefront"

// SessionChangedData is the payload of a forwarded session event.
type SessionChangedData struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Change string `json:"change"`
}

// Publisher writes an event to a topic. *pkgkafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer forwards session events to Kafka, one topic per change type.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a forwarder over publisher.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// Topic returns the topic a change type is published to, for example
// "storefront.session.logged_in".
func Topic(t domain.SessionEventType) string {
	return pkgkafka.Topic(AggregateTypeSession, string(t))
}

// PublishSessionChanged forwards e. It is a bus Handler.
func (p *Producer) PublishSessionChanged(ctx context.Context, e domain.SessionEvent) error {
	topic := Topic(e.Type)
	data := SessionChangedData{UserID: e.UserID, Email: e.Email, Change: string(e.Type)}

	event, err := pkgkafka.NewEvent(topic, e.UserID, AggregateTypeSession, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published session event",
		slog.String("topic", topic),
		slog.String("user_id", e.UserID),
	)
	return nil
}
