package inventory

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/health"
	"github.com/zero-day-ai/inventory/katalogus"
	"github.com/zero-day-ai/inventory/knowledge"
	"github.com/zero-day-ai/inventory/params"
	"github.com/zero-day-ai/inventory/provenance"
)

// Organization identifies the tenant all reads are scoped to.
type Organization struct {
	Code string `json:"code"`
	Name string `json:"name,omitempty"`
}

// Catalog is the plugin catalog used for provenance and plugin listings.
// *katalogus.Client implements it.
type Catalog interface {
	provenance.PluginCatalog
	Plugins(ctx context.Context, organization string) ([]katalogus.Plugin, error)
}

// Option configures a Session.
type Option func(*Session)

// WithOrganization scopes the session to org.
func WithOrganization(org *Organization) Option {
	return func(s *Session) {
		s.org = org
	}
}

// WithConnector sets the graph connector.
func WithConnector(conn connector.Connector) Option {
	return func(s *Session) {
		s.conn = conn
	}
}

// WithObjectStore sets the normalizer metadata store used for provenance.
func WithObjectStore(store provenance.MetaStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithCatalog sets the plugin catalog.
func WithCatalog(catalog Catalog) Option {
	return func(s *Session) {
		s.catalog = catalog
	}
}

// WithKnowledge sets the knowledge-base source merged into properties.
func WithKnowledge(source knowledge.Source) Option {
	return func(s *Session) {
		s.knowledge = source
	}
}

// WithParams sets the boundary parameter parser.
func WithParams(p *params.Parser) Option {
	return func(s *Session) {
		if p != nil {
			s.params = p
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHealthCheck adds a dependency probe reported by Session.Health.
func WithHealthCheck(check health.Check) Option {
	return func(s *Session) {
		s.checks = append(s.checks, check)
	}
}

// WithCloser registers a resource released by Session.Close.
func WithCloser(name string, closer io.Closer) Option {
	return func(s *Session) {
		if closer != nil {
			s.closers = append(s.closers, namedCloser{name: name, closer: closer})
		}
	}
}
