// Package apiclient is the single gateway from the storefront stores to the
// remote REST API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httpclient"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
	"github.com/utafrali/EcommerceGo/storefront/pkg/middleware"
	"github.com/utafrali/EcommerceGo/storefront/pkg/tracing"
)

// DefaultBaseURL is the production storefront API.
const DefaultBaseURL = "https://api-ecommerce-shoe.onrender.com/api"

const tracerName = "github.com/utafrali/EcommerceGo/storefront/internal/apiclient"

// maxResponseBody caps how much of a successful response is read.
const maxResponseBody = 8 << 20

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Total number of requests sent to the storefront API",
		},
		[]string{"method", "route", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Storefront API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// TokenSource supplies the bearer token for outbound requests.
type TokenSource interface {
	Token() string
}

// Response is a successful (2xx) API response with its body fully read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON decodes the body into a generic value: objects become
// map[string]any and numbers float64. An empty body decodes to nil.
func (r *Response) JSON() (any, error) {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

// Client sends requests to the storefront API. It is safe for concurrent use.
type Client struct {
	baseURL string
	doer    httpclient.Doer
	tokens  TokenSource
	logger  *slog.Logger
}

// New creates a client for baseURL. The token is read from tokens at the
// moment each request is dispatched.
func New(baseURL string, doer httpclient.Doer, tokens TokenSource, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		tokens:  tokens,
		logger:  logger,
	}
}

// Request performs a single call. body, when non-nil, is sent as JSON.
//
// A transport failure (or an open circuit) yields *apperrors.NetworkError.
// A non-2xx response yields *apperrors.AppError carrying the status and the
// server-provided message.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*Response, error) {
	route := routeOf(path)
	start := time.Now()

	ctx, span := tracing.Tracer(tracerName).Start(ctx, "API "+method+" /"+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("http.route", route),
		),
	)
	defer span.End()

	resp, err := c.do(ctx, method, path, body)

	status := "network_error"
	if resp != nil {
		status = strconv.Itoa(resp.Status)
	} else {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			status = strconv.Itoa(appErr.Status)
		}
	}
	apiRequestsTotal.WithLabelValues(method, route, status).Inc()
	apiRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("http.response.status", status))

	log := logger.WithContext(ctx, c.logger)
	if err != nil {
		tracing.RecordError(span, err)
		log.DebugContext(ctx, "api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("status", status),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	log.DebugContext(ctx, "api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("status", status),
		slog.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	httpReq.Header.Set(middleware.CorrelationHeader, correlationID)
	tracing.InjectHeaders(ctx, httpReq.Header)

	resp, err := c.doer.Do(ctx, httpReq)
	if err != nil {
		return nil, err
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, apperrors.Network(method+" "+path, err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

// PathSegment escapes an identifier for use as one path segment.
func PathSegment(id string) string {
	return url.PathEscape(id)
}

// routeOf reduces a request path to its first segment for metric labels.
func routeOf(path string) string {
	path, _, _ = strings.Cut(path, "?")
	path = strings.TrimPrefix(path, "/")
	seg, _, _ := strings.Cut(path, "/")
	if seg == "" {
		return "root"
	}
	return seg
}
