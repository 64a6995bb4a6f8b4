package transport

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
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RequestIDHeader carries a per-request UUID to the remote service.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 4096

const instrumentationName = "github.com/zero-day-ai/inventory/transport"

// Client is a JSON-over-HTTP client for one remote service.
//
// Every call is a single round trip: Client never retries. Each request is
// tagged with a request id, traced as a client span, counted, and guarded by
// a circuit breaker shared by all requests to the service.
//
// Thread-safety: a Client is safe for concurrent use.
type Client struct {
	service string
	baseURL *url.URL

	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
	meter   metric.Meter

	breakerSettings BreakerSettings
	breaker         *gobreaker.CircuitBreaker

	requests metric.Int64Counter
	duration metric.Float64Histogram
}

// New creates a client for service rooted at baseURL.
func New(service, baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBaseURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidBaseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		service:         service,
		baseURL:         u,
		timeout:         30 * time.Second,
		logger:          slog.Default(),
		tracer:          tracenoop.NewTracerProvider().Tracer(instrumentationName),
		meter:           metricnoop.NewMeterProvider().Meter(instrumentationName),
		breakerSettings: DefaultBreakerSettings(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	c.logger = c.logger.With("component", "transport", "service", service)
	c.breaker = newBreaker(service, c.breakerSettings, c.logger)

	c.requests, err = c.meter.Int64Counter(
		"inventory.transport.requests",
		metric.WithDescription("Number of requests sent to a remote service"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}
	c.duration, err = c.meter.Float64Histogram(
		"inventory.transport.duration",
		metric.WithDescription("Request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return c, nil
}

// Service returns the name the client was created with.
func (c *Client) Service() string {
	return c.service
}

// BaseURL returns a copy of the base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

type request struct {
	header   http.Header
	jsonBody any
	formBody map[string]string
}

// Do sends one request to path (relative to the base URL) and decodes a 2xx
// JSON response into out. A nil out discards the body.
//
// Errors are *NetworkError, *StatusError or *DecodeError, all of which satisfy
// IsRequestError. An open circuit breaker yields a *NetworkError wrapping
// ErrUnavailable.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, out any, opts ...RequestOption) error {
	r := &request{header: make(http.Header)}
	for _, opt := range opts {
		opt(r)
	}

	if c.breaker == nil {
		return c.do(ctx, method, path, query, out, r)
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.do(ctx, method, path, query, out, r)
	})
	if isRejection(err) {
		return &NetworkError{Service: c.service, Method: method, Path: path, Err: errors.Join(ErrUnavailable, err)}
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any, r *request) error {
	ctx, span := c.tracer.Start(ctx, c.service+" "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
			attribute.String("peer.service", c.service),
		))
	defer span.End()

	start := time.Now()
	status, err := c.roundTrip(ctx, method, path, query, out, r)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	attrs := metric.WithAttributes(
		attribute.String("service", c.service),
		attribute.String("method", method),
		attribute.Int("status", status),
	)
	c.requests.Add(ctx, 1, attrs)
	c.duration.Record(ctx, elapsed, attrs)

	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("request failed", "method", method, "path", path, "status", status, "error", err)
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, out any, r *request) (int, error) {
	u := c.BaseURL()
	u.Path = u.Path + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	body, contentType, err := r.encodeBody()
	if err != nil {
		return 0, fmt.Errorf("%s: encode request body: %w", c.service, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return 0, fmt.Errorf("%s: build request: %w", c.service, err)
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, &NetworkError{Service: c.service, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &StatusError{
			Service:    c.service,
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, &DecodeError{Service: c.service, Path: path, Err: err}
	}
	return resp.StatusCode, nil
}

func (r *request) encodeBody() (io.Reader, string, error) {
	switch {
	case r.jsonBody != nil:
		data, err := json.Marshal(r.jsonBody)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	case r.formBody != nil:
		values := make(url.Values, len(r.formBody))
		for k, v := range r.formBody {
			values.Set(k, v)
		}
		return strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", nil
	default:
		return nil, "", nil
	}
}
