package transport

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the structured logger.
// If not provided, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets an OpenTelemetry tracer. One client span is recorded per request.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMeter sets an OpenTelemetry meter for request counters and latency histograms.
func WithMeter(meter metric.Meter) Option {
	return func(c *Client) {
		if meter != nil {
			c.meter = meter
		}
	}
}

// WithBreaker configures the circuit breaker guarding the service.
func WithBreaker(settings BreakerSettings) Option {
	return func(c *Client) {
		c.breakerSettings = settings
	}
}

// RequestOption modifies a single request.
type RequestOption func(*request)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *request) {
		r.header.Set(key, value)
	}
}

// WithBearer sets an Authorization bearer token.
func WithBearer(token string) RequestOption {
	return func(r *request) {
		r.header.Set("Authorization", "Bearer "+token)
	}
}

// WithJSONBody encodes v as the JSON request body.
func WithJSONBody(v any) RequestOption {
	return func(r *request) {
		r.jsonBody = v
	}
}

// WithFormBody sends values as an application/x-www-form-urlencoded body.
func WithFormBody(values map[string]string) RequestOption {
	return func(r *request) {
		r.formBody = values
	}
}
