package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/zero-day-ai/inventory/ooi"
	"github.com/zero-day-ai/inventory/transport"
)

// ErrMissingOrganization is returned when an APIConnector is created
// without an organization code.
var ErrMissingOrganization = errors.New("organization code is required")

// APIConnector talks to the graph service over HTTP.
type APIConnector struct {
	client       *transport.Client
	organization string
	logger       *slog.Logger
}

// APIOption configures an APIConnector.
type APIOption func(*APIConnector)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) APIOption {
	return func(c *APIConnector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewAPIConnector returns a connector for organization using client.
func NewAPIConnector(client *transport.Client, organization string, opts ...APIOption) (*APIConnector, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: nil transport client", ErrInvalidArgument)
	}
	if organization == "" {
		return nil, ErrMissingOrganization
	}

	c := &APIConnector{
		client:       client,
		organization: organization,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "connector", "organization", organization)
	return c, nil
}

// Organization returns the organization code the connector is scoped to.
func (c *APIConnector) Organization() string {
	return c.organization
}

func (c *APIConnector) path(endpoint string) string {
	return "/" + url.PathEscape(c.organization) + "/" + endpoint
}

func validTimeQuery(validTime time.Time) url.Values {
	return url.Values{"valid_time": {FormatValidTime(validTime)}}
}

// FormatValidTime renders t the way the graph service expects it.
func FormatValidTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Get implements Connector.
func (c *APIConnector) Get(ctx context.Context, ref ooi.Reference, validTime time.Time) (*ooi.Object, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: empty reference", ErrInvalidArgument)
	}

	q := validTimeQuery(validTime)
	q.Set("reference", ref.String())

	var obj ooi.Object
	if err := c.client.Do(ctx, http.MethodGet, c.path("object"), q, &obj); err != nil {
		return nil, c.mapError(ref, err)
	}
	return &obj, nil
}

// GetTree implements Connector.
func (c *APIConnector) GetTree(ctx context.Context, ref ooi.Reference, depth int, validTime time.Time) (*ooi.ReferenceTree, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: empty reference", ErrInvalidArgument)
	}
	if depth < 1 {
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidArgument, depth)
	}

	q := validTimeQuery(validTime)
	q.Set("reference", ref.String())
	q.Set("depth", strconv.Itoa(depth))

	var tree ooi.ReferenceTree
	if err := c.client.Do(ctx, http.MethodGet, c.path("tree"), q, &tree); err != nil {
		return nil, c.mapError(ref, err)
	}
	if tree.Store == nil {
		tree.Store = make(map[string]*ooi.Object)
	}
	return &tree, nil
}

// List implements Connector.
func (c *APIConnector) List(ctx context.Context, types []string, validTime time.Time, offset, limit int) (*ooi.Page, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset %d limit %d", ErrInvalidArgument, offset, limit)
	}

	q := validTimeQuery(validTime)
	sorted := append([]string(nil), types...)
	sort.Strings(sorted)
	for _, t := range sorted {
		q.Add("types", t)
	}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))

	var page ooi.Page
	if err := c.client.Do(ctx, http.MethodGet, c.path("objects"), q, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []*ooi.Object{}
	}
	return &page, nil
}

type scanProfileRequest struct {
	Type      ooi.ScanProfileType `json:"scan_profile_type"`
	Reference ooi.Reference       `json:"reference"`
	Level     ooi.ScanLevel       `json:"level"`
}

// SaveScanProfile implements Connector.
func (c *APIConnector) SaveScanProfile(ctx context.Context, profile ooi.ScanProfile, validTime time.Time) error {
	if profile.Reference.IsZero() {
		return fmt.Errorf("%w: scan profile without reference", ErrInvalidArgument)
	}
	if profile.Level < ooi.L0 {
		return fmt.Errorf("%w: scan level %d", ErrInvalidArgument, int(profile.Level))
	}

	body := scanProfileRequest{
		Type:      profile.Type,
		Reference: profile.Reference,
		Level:     profile.Level,
	}
	err := c.client.Do(ctx, http.MethodPut, c.path("scan_profiles"), validTimeQuery(validTime), nil,
		transport.WithJSONBody(body))
	if err != nil {
		return c.mapError(profile.Reference, err)
	}

	c.logger.Info("scan profile saved",
		"reference", profile.Reference.String(),
		"level", profile.Level.String(),
		"type", string(profile.Type))
	return nil
}

// ListOrigins implements Connector.
func (c *APIConnector) ListOrigins(ctx context.Context, ref ooi.Reference, validTime time.Time) ([]ooi.Origin, error) {
	if ref.IsZero() {
		return nil, fmt.Errorf("%w: empty reference", ErrInvalidArgument)
	}

	q := validTimeQuery(validTime)
	q.Set("result", ref.String())

	var origins []ooi.Origin
	if err := c.client.Do(ctx, http.MethodGet, c.path("origins"), q, &origins); err != nil {
		return nil, err
	}
	return origins, nil
}

// Health checks that the graph service answers for the organization.
func (c *APIConnector) Health(ctx context.Context) error {
	return c.client.Do(ctx, http.MethodGet, c.path("health"), nil, nil)
}

func (c *APIConnector) mapError(ref ooi.Reference, err error) error {
	if se, ok := transport.AsStatus(err); ok && se.NotFound() {
		return &NotFoundError{Reference: ref, Err: err}
	}
	return err
}

var _ Connector = (*APIConnector)(nil)
