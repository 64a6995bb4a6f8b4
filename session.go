package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/health"
	"github.com/zero-day-ai/inventory/katalogus"
	"github.com/zero-day-ai/inventory/knowledge"
	"github.com/zero-day-ai/inventory/listing"
	"github.com/zero-day-ai/inventory/ooi"
	"github.com/zero-day-ai/inventory/params"
	"github.com/zero-day-ai/inventory/properties"
	"github.com/zero-day-ai/inventory/provenance"
	"github.com/zero-day-ai/inventory/resolver"
	"github.com/zero-day-ai/inventory/scanprofile"
)

// Session composes every inventory capability for one organization.
//
// Configuration problems (no organization, an organization without a code,
// no connector) are reported by each operation before it touches any
// service, as KindConfiguration errors.
//
// Thread-safety: A Session is safe for concurrent use once built.
type Session struct {
	org       *Organization
	conn      connector.Connector
	store     provenance.MetaStore
	catalog   Catalog
	knowledge knowledge.Source
	params    *params.Parser
	logger    *slog.Logger
	now       func() time.Time
	checks    []health.Check
	closers   []namedCloser
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// Provenance is the outcome of Session.Origins, partitioned by origin type.
type Provenance struct {
	Declarations []provenance.OriginData `json:"declarations"`
	Observations []provenance.OriginData `json:"observations"`
	Inferences   []provenance.OriginData `json:"inferences"`
}

// New builds a session. It never fails; see Session for how missing
// configuration surfaces.
func New(opts ...Option) *Session {
	s := &Session{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.params == nil {
		s.params = params.New(params.WithClock(s.now))
	}
	s.logger = s.logger.With("component", "inventory")
	return s
}

// Organization returns the configured organization, which may be nil.
func (s *Session) Organization() *Organization {
	return s.org
}

// Params returns the boundary parameter parser.
func (s *Session) Params() *params.Parser {
	return s.params
}

func (s *Session) organizationCode(op string) (string, error) {
	if s.org == nil {
		return "", NewConfigurationError(op, ErrMissingOrganization)
	}
	if s.org.Code == "" {
		return "", NewConfigurationError(op, ErrMissingOrganizationCode)
	}
	return s.org.Code, nil
}

// Connector returns the graph connector after checking the configuration.
func (s *Session) Connector() (connector.Connector, error) {
	return s.connector("Session.Connector")
}

func (s *Session) connector(op string) (connector.Connector, error) {
	if _, err := s.organizationCode(op); err != nil {
		return nil, err
	}
	if s.conn == nil {
		return nil, NewConfigurationError(op, ErrMissingConnector)
	}
	return s.conn, nil
}

func refContext(err error, ref ooi.Reference) error {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindConfiguration {
		return e.WithContext(map[string]any{"reference": ref.String()})
	}
	return err
}

// Get fetches the object ref refers to as of validTime.
func (s *Session) Get(ctx context.Context, ref ooi.Reference, validTime time.Time) (*ooi.Object, error) {
	const op = "Session.Get"
	conn, err := s.connector(op)
	if err != nil {
		return nil, err
	}
	obj, err := conn.Get(ctx, ref, validTime)
	if err != nil {
		return nil, refContext(classify(op, err), ref)
	}
	return obj, nil
}

// Lookup parses primaryKey and fetches the object. A malformed key is a
// KindValidation error; an unknown object is KindNotFound.
func (s *Session) Lookup(ctx context.Context, primaryKey string, validTime time.Time) (*ooi.Object, error) {
	const op = "Session.Lookup"
	conn, err := s.connector(op)
	if err != nil {
		return nil, err
	}
	ref, err := ooi.Parse(primaryKey)
	if err != nil {
		return nil, NewValidationError(op, err)
	}
	obj, err := conn.Get(ctx, ref, validTime)
	if err != nil {
		return nil, refContext(classify(op, err), ref)
	}
	return obj, nil
}

// Tree resolves ref to depth and returns the object with the tree it came
// from. For depth 1 the tree holds the object alone.
func (s *Session) Tree(ctx context.Context, ref ooi.Reference, depth int, validTime time.Time) (*ooi.Object, *ooi.ReferenceTree, error) {
	const op = "Session.Tree"
	conn, err := s.connector(op)
	if err != nil {
		return nil, nil, err
	}

	r := resolver.New(conn)
	obj, err := r.Resolve(ctx, ref, depth, validTime)
	if err != nil {
		return nil, nil, refContext(classify(op, err), ref)
	}

	return obj, r.Tree(), nil
}

// List returns a lazy listing of the given types. Nothing is fetched until
// the listing is used.
func (s *Session) List(types []string, validTime time.Time) (*listing.List, error) {
	conn, err := s.connector("Session.List")
	if err != nil {
		return nil, err
	}
	return listing.New(conn, types, validTime), nil
}

// Count is a convenience for List(types, validTime).Count.
func (s *Session) Count(ctx context.Context, types []string, validTime time.Time) (int, error) {
	const op = "Session.Count"
	l, err := s.List(types, validTime)
	if err != nil {
		return 0, err
	}
	n, err := l.Count(ctx)
	return n, classify(op, err)
}

// Origins aggregates the provenance of ref. Failures of the remote services
// degrade the result instead of failing it; only missing configuration
// returns an error.
func (s *Session) Origins(ctx context.Context, ref ooi.Reference, validTime time.Time) (*Provenance, error) {
	const op = "Session.Origins"
	conn, err := s.connector(op)
	if err != nil {
		return nil, err
	}
	if s.store == nil || s.catalog == nil {
		return nil, NewConfigurationError(op, fmt.Errorf("%w: object store and plugin catalog", ErrMissingService))
	}

	agg := provenance.New(conn, s.store, s.catalog, provenance.WithLogger(s.logger))
	decl, obs, inf := agg.Aggregate(ctx, ref, validTime, s.org.Code)
	return &Provenance{Declarations: decl, Observations: obs, Inferences: inf}, nil
}

// Declare sets a declared scan level on ref, effective now.
func (s *Session) Declare(ctx context.Context, ref ooi.Reference, level ooi.ScanLevel) (ooi.ScanProfile, error) {
	const op = "Session.Declare"
	conn, err := s.connector(op)
	if err != nil {
		return ooi.ScanProfile{}, err
	}

	d := scanprofile.New(conn, scanprofile.WithClock(s.now), scanprofile.WithLogger(s.logger))
	profile, err := d.Declare(ctx, ref, level)
	if err != nil {
		return ooi.ScanProfile{}, refContext(classify(op, err), ref)
	}
	return profile, nil
}

// Properties resolves ref to depth and projects its scalar properties,
// merged with the knowledge base when one is configured.
func (s *Session) Properties(ctx context.Context, ref ooi.Reference, depth int, validTime time.Time) (map[string]any, error) {
	const op = "Session.Properties"
	obj, tree, err := s.Tree(ctx, ref, depth, validTime)
	if err != nil {
		return nil, err
	}
	props, err := properties.New(s.knowledge).Project(ctx, obj, tree)
	if err != nil {
		return nil, refContext(classify(op, err), ref)
	}
	return props, nil
}

// Plugins lists the catalog of the session's organization, filtered by opt
// and, when pred is not nil, by pred.
func (s *Session) Plugins(ctx context.Context, opt katalogus.FilterOption, pred *katalogus.Predicate) ([]katalogus.Plugin, error) {
	const op = "Session.Plugins"
	code, err := s.organizationCode(op)
	if err != nil {
		return nil, err
	}
	if s.catalog == nil {
		return nil, NewConfigurationError(op, fmt.Errorf("%w: plugin catalog", ErrMissingService))
	}

	plugins, err := s.catalog.Plugins(ctx, code)
	if err != nil {
		return nil, classify(op, err)
	}
	if pred != nil {
		if plugins, err = pred.Select(plugins); err != nil {
			return nil, classify(op, err)
		}
	}
	return katalogus.Apply(plugins, opt), nil
}

// Health probes every registered dependency.
func (s *Session) Health(ctx context.Context) health.Report {
	return health.Run(ctx, s.checks...)
}

// Close releases registered resources in reverse order of registration.
func (s *Session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
