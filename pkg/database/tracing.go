package database

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/EcommerceGo/storefront/pkg/tracing"
)

const tracerName = "github.com/utafrali/EcommerceGo/storefront/pkg/database"

// Tracer wraps store operations in client spans and reports slow ones.
// A zero SlowThreshold or nil Logger disables slow-operation logging.
type Tracer struct {
	System        string
	SlowThreshold time.Duration
	Logger        *slog.Logger
}

// Trace starts a span for one store operation. Call the returned function
// with the operation's error when it completes:
//
//	ctx, end := tracer.Trace(ctx, "GET", key)
//	defer func() { end(err) }()
func (t Tracer) Trace(ctx context.Context, operation, key string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := tracing.Tracer(tracerName).Start(ctx, t.System+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.System),
			attribute.String("db.operation", operation),
			attribute.String("db.key", key),
		),
	)

	return ctx, func(err error) {
		tracing.RecordError(span, err)
		span.End()

		if t.SlowThreshold <= 0 || t.Logger == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= t.SlowThreshold {
			attrs := []any{
				slog.String("system", t.System),
				slog.String("operation", operation),
				slog.String("key", key),
				slog.Duration("duration", elapsed),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			t.Logger.WarnContext(ctx, "slow store operation", attrs...)
		}
	}
}
