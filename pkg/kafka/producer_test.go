package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

type sessionData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func TestNewEvent_Fields(t *testing.T) {
	data := sessionData{UserID: "u-1", Email: "a@b.co"}
	event, err := NewEvent("session.logged_in", "u-1", "session", "storefront", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "session.logged_in", event.EventType)
	assert.Equal(t, "u-1", event.AggregateID)
	assert.Equal(t, "session", event.AggregateType)
	assert.Equal(t, SchemaVersion, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var decoded sessionData
	require.NoError(t, event.UnmarshalData(&decoded))
	assert.Equal(t, data, decoded)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("x", "a", "t", "s", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal x payload")
}

func TestEvent_CorrelationAndKey(t *testing.T) {
	event, err := NewEvent("session.logged_out", "u-1", "session", "storefront", nil)
	require.NoError(t, err)

	assert.Same(t, event, event.WithCorrelationID("corr-1"))
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, []byte("u-1"), event.Key())

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	var restored Event
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, event.EventID, restored.EventID)
	assert.Equal(t, "corr-1", restored.CorrelationID)
}

func TestEvent_KeyWithoutAggregate(t *testing.T) {
	event, err := NewEvent("session.expired", "", "session", "storefront", nil)
	require.NoError(t, err)

	assert.Equal(t, []byte(event.EventID), event.Key())
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "aggregate_id")
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "storefront.session.logged_in", Topic("session", "logged_in"))
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.False(t, cfg.Async)
}

func TestProducer_Publish_WritesKeyedMessage(t *testing.T) {
	w := new(mockWriter)
	p := NewProducerWithWriter(w, logger.Discard())

	event, err := NewEvent("session.logged_in", "u-1", "session", "storefront", sessionData{UserID: "u-1"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	topic := Topic("session", "logged_in")
	before := testutil.ToFloat64(messagesPublished.WithLabelValues(topic, "ok"))

	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		m := msgs[0]
		var env Event
		if json.Unmarshal(m.Value, &env) != nil {
			return false
		}
		carrier := &HeaderCarrier{headers: &m.Headers}
		return m.Topic == topic &&
			string(m.Key) == "u-1" &&
			env.EventID == event.EventID &&
			carrier.Get("event_type") == "session.logged_in" &&
			carrier.Get("correlation_id") == "corr-9"
	})).Return(nil).Once()

	require.NoError(t, p.Publish(context.Background(), topic, event))
	w.AssertExpectations(t)
	assert.Equal(t, before+1, testutil.ToFloat64(messagesPublished.WithLabelValues(topic, "ok")))
}

func TestProducer_Publish_InjectsTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		carrier := &HeaderCarrier{headers: &msgs[0].Headers}
		return carrier.Get("traceparent") == "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"
	})).Return(nil).Once()

	event, _ := NewEvent("session.expired", "u-2", "session", "storefront", nil)
	require.NoError(t, NewProducerWithWriter(w, logger.Discard()).Publish(ctx, "t", event))
	w.AssertExpectations(t)
}

func TestProducer_Publish_WrapsWriterError(t *testing.T) {
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("leader not available")).Once()

	event, _ := NewEvent("session.logged_out", "u-3", "session", "storefront", nil)
	err := NewProducerWithWriter(w, logger.Discard()).Publish(context.Background(), "storefront.session.logged_out", event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storefront.session.logged_out")
	assert.Contains(t, err.Error(), "leader not available")
}

func TestProducer_Close(t *testing.T) {
	w := new(mockWriter)
	w.On("Close").Return(nil).Once()
	require.NoError(t, NewProducerWithWriter(w, logger.Discard()).Close())
	w.AssertExpectations(t)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers")
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("v1")}}
	c := &HeaderCarrier{headers: &headers}

	assert.Equal(t, "v1", c.Get("existing"))
	assert.Empty(t, c.Get("missing"))

	c.Set("existing", "v2")
	c.Set("new", "v3")
	assert.Equal(t, "v2", c.Get("existing"))
	assert.ElementsMatch(t, []string{"existing", "new"}, c.Keys())
}
