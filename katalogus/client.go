// Package katalogus is a client for the per-organization plugin catalog.
package katalogus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/zero-day-ai/inventory/transport"
)

var (
	// ErrPluginNotFound indicates that the catalog has no plugin with the id.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrMissingOrganization is returned for calls without an organization code.
	ErrMissingOrganization = errors.New("organization code is required")
)

// Client reads the plugin catalog. Every call names the organization whose
// view of the catalog is read.
type Client struct {
	http   *transport.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a catalog client.
func New(http *transport.Client, opts ...Option) *Client {
	c := &Client{http: http, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "katalogus")
	return c
}

func pluginsPath(organization string) string {
	return "/v1/organisations/" + url.PathEscape(organization) + "/plugins"
}

// Plugin returns the plugin id as seen by organization.
func (c *Client) Plugin(ctx context.Context, organization, id string) (*Plugin, error) {
	if organization == "" {
		return nil, ErrMissingOrganization
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrPluginNotFound)
	}

	var p Plugin
	err := c.http.Do(ctx, http.MethodGet, pluginsPath(organization)+"/"+url.PathEscape(id), nil, &p)
	if err != nil {
		if se, ok := transport.AsStatus(err); ok && se.NotFound() {
			return nil, fmt.Errorf("%w: %s: %w", ErrPluginNotFound, id, err)
		}
		return nil, err
	}
	return &p, nil
}

// Plugins lists every plugin available to organization.
func (c *Client) Plugins(ctx context.Context, organization string) ([]Plugin, error) {
	if organization == "" {
		return nil, ErrMissingOrganization
	}

	var plugins []Plugin
	if err := c.http.Do(ctx, http.MethodGet, pluginsPath(organization), nil, &plugins); err != nil {
		return nil, err
	}
	c.logger.Debug("listed plugins", "organization", organization, "count", len(plugins))
	return plugins, nil
}

// Health checks that the catalog is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.http.Do(ctx, http.MethodGet, "/health", nil, nil)
}
