package httpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// CircuitBreakerConfig tunes the breaker in front of the remote API.
type CircuitBreakerConfig struct {
	Name string

	// HalfOpenProbes is how many requests may test the API while half-open.
	HalfOpenProbes uint32
	// Window clears the closed-state counters periodically; 0 never clears them.
	Window time.Duration
	// Cooldown is how long the breaker stays open before probing again.
	Cooldown time.Duration

	// The breaker opens once at least MinRequests were seen in the window and
	// the share of failures reaches FailureRatio.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultCircuitBreakerConfig returns the settings used for the storefront API.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:           name,
		HalfOpenProbes: 1,
		Window:         60 * time.Second,
		Cooldown:       30 * time.Second,
		MinRequests:    5,
		FailureRatio:   0.5,
	}
}

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "storefront_api_circuit_breaker_state",
		Help: "Current state of the API circuit breaker (0=closed, 1=half-open, 2=open)",
	}, []string{"name"})

	breakerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_api_circuit_breaker_rejections_total",
		Help: "Requests refused without contacting the API because the breaker was open",
	}, []string{"name"})
)

func gaugeValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// ErrCircuitOpen is wrapped in the NetworkError returned while the breaker is open.
var ErrCircuitOpen = gobreaker.ErrOpenState

// CircuitBreakerClient fails fast while the API keeps erroring.
type CircuitBreakerClient struct {
	next    Doer
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  *slog.Logger
	name    string
}

// NewCircuitBreakerClient wraps next with a breaker configured by cfg.
func NewCircuitBreakerClient(next Doer, cfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	c := &CircuitBreakerClient{next: next, logger: logger, name: cfg.Name}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.HalfOpenProbes,
		Interval:      cfg.Window,
		Timeout:       cfg.Cooldown,
		ReadyToTrip:   tripAfter(cfg.MinRequests, cfg.FailureRatio),
		IsSuccessful:  countsAsSuccess,
		OnStateChange: c.onStateChange,
	})
	breakerState.WithLabelValues(cfg.Name).Set(0)

	return c
}

func tripAfter(minRequests uint32, ratio float64) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests < minRequests {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
	}
}

// countsAsSuccess treats 4xx answers as healthy: a rejected login or an
// out-of-stock add says nothing about whether the API is up.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Status < http.StatusInternalServerError
}

func (c *CircuitBreakerClient) onStateChange(name string, from, to gobreaker.State) {
	c.logger.Warn("api circuit breaker state change",
		slog.String("breaker", name),
		slog.String("from", from.String()),
		slog.String("to", to.String()),
	)
	breakerState.WithLabelValues(name).Set(gaugeValue(to))
}

// Do sends req through the breaker. A 5xx response is consumed and returned as
// *apperrors.AppError so it counts as a failure. A request the breaker refuses
// is a NetworkError since it never left the process.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.next.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, ParseResponseError(resp)
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		breakerRejections.WithLabelValues(c.name).Inc()
		c.logger.WarnContext(ctx, "api call refused by circuit breaker",
			slog.String("breaker", c.name),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
		)
		return nil, apperrors.Network(fmt.Sprintf("%s %s", req.Method, req.URL.Path), err)
	case err != nil:
		return nil, err
	}
	return resp, nil
}

// State returns the current state of the circuit breaker.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}

// Open reports whether calls are currently being refused.
func (c *CircuitBreakerClient) Open() bool {
	return c.State() == gobreaker.StateOpen
}
