package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zero-day-ai/inventory/config"
	"github.com/zero-day-ai/inventory/connector"
	"github.com/zero-day-ai/inventory/discovery"
	"github.com/zero-day-ai/inventory/health"
	"github.com/zero-day-ai/inventory/katalogus"
	"github.com/zero-day-ai/inventory/knowledge"
	"github.com/zero-day-ai/inventory/objectstore"
	"github.com/zero-day-ai/inventory/params"
	"github.com/zero-day-ai/inventory/transport"
)

// Open wires a Session from cfg: service URLs come from the file or, when
// missing there, from etcd discovery. opts are applied after the wiring, so
// they can replace any component.
//
// The returned session owns the clients it created; Close it when done.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Session, error) {
	const op = "Open"
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewConfigurationError(op, err)
	}

	var wired []Option
	fail := func(err error) (*Session, error) {
		// Release whatever was opened before the failure.
		_ = New(wired...).Close()
		return nil, classify(op, err)
	}

	urls, err := serviceURLs(ctx, cfg, logger, &wired)
	if err != nil {
		return fail(err)
	}

	httpOpts := []transport.Option{
		transport.WithTimeout(cfg.Graph.GetTimeout()),
		transport.WithLogger(logger),
		transport.WithBreaker(cfg.Breaker.Settings()),
	}

	graphHTTP, err := transport.New(discovery.ServiceGraph, urls[discovery.ServiceGraph], httpOpts...)
	if err != nil {
		return fail(err)
	}
	conn, err := connector.NewAPIConnector(graphHTTP, cfg.Organization, connector.WithLogger(logger))
	if err != nil {
		return fail(err)
	}

	storeHTTP, err := transport.New(discovery.ServiceObjectStore, urls[discovery.ServiceObjectStore], httpOpts...)
	if err != nil {
		return fail(err)
	}
	store, err := objectstore.New(storeHTTP, objectstore.Credentials{
		Username: cfg.ObjectStore.Username,
		Password: cfg.ObjectStore.Password,
	}, objectstore.WithLogger(logger))
	if err != nil {
		return fail(err)
	}

	catalogHTTP, err := transport.New(discovery.ServiceKatalogus, urls[discovery.ServiceKatalogus], httpOpts...)
	if err != nil {
		return fail(err)
	}
	catalog := katalogus.New(catalogHTTP, katalogus.WithLogger(logger))

	wired = append(wired,
		WithOrganization(&Organization{Code: cfg.Organization}),
		WithConnector(conn),
		WithObjectStore(store),
		WithCatalog(catalog),
		WithLogger(logger),
		WithParams(params.New(params.WithDepth(cfg.Depth.Default, cfg.Depth.Max))),
		WithHealthCheck(health.Check{Name: discovery.ServiceGraph, Target: conn}),
		WithHealthCheck(health.Check{Name: discovery.ServiceObjectStore, Target: store}),
		WithHealthCheck(health.Check{Name: discovery.ServiceKatalogus, Target: catalog}),
	)

	if err := wireKnowledge(cfg.Knowledge, logger, &wired); err != nil {
		return fail(err)
	}

	return New(append(wired, opts...)...), nil
}

// serviceURLs returns the base URL of each remote service. URLs set in the
// file win over discovery.
func serviceURLs(ctx context.Context, cfg *config.Config, logger *slog.Logger, wired *[]Option) (map[string]string, error) {
	static := discovery.Static{
		discovery.ServiceGraph:       cfg.Graph.URL,
		discovery.ServiceObjectStore: cfg.ObjectStore.URL,
		discovery.ServiceKatalogus:   cfg.Katalogus.URL,
	}

	var dyn discovery.Resolver
	if cfg.Discovery.Enabled() {
		dc := discovery.Config{
			Endpoints:   cfg.Discovery.Endpoints,
			Namespace:   cfg.Discovery.Namespace,
			DialTimeout: cfg.Discovery.GetDialTimeout(),
			Logger:      logger,
		}
		if t := cfg.Discovery.TLS; t.Enabled() {
			dc.TLS = &discovery.TLSConfig{CertFile: t.CertFile, KeyFile: t.KeyFile, CAFile: t.CAFile}
		}
		client, err := discovery.NewClient(dc)
		if err != nil {
			return nil, NewConfigurationError("Open", err)
		}
		*wired = append(*wired, WithCloser("discovery", client))
		dyn = client
	}

	urls := make(map[string]string, len(static))
	for service := range static {
		u, err := static.Resolve(ctx, service)
		if err != nil && dyn != nil {
			u, err = dyn.Resolve(ctx, service)
		}
		if err != nil {
			return nil, NewConfigurationError("Open", err)
		}
		logger.Debug("resolved service", "service", service, "url", u)
		urls[service] = u
	}
	return urls, nil
}

func wireKnowledge(cfg config.KnowledgeConfig, logger *slog.Logger, wired *[]Option) error {
	if cfg.File == "" {
		return nil
	}

	kb, err := knowledge.LoadFile(cfg.File)
	if err != nil {
		return NewConfigurationError("Open", fmt.Errorf("load knowledge base: %w", err))
	}
	*wired = append(*wired, WithHealthCheck(health.Check{
		Name:   "knowledge-file",
		Target: health.PingFunc(func(context.Context) error {
			if st := health.FileCheck(cfg.File); st.IsUnhealthy() {
				return errors.New(st.Message)
			}
			return nil
		}),
	}))

	if cfg.RedisURL == "" {
		*wired = append(*wired, WithKnowledge(kb))
		return nil
	}

	cache, err := knowledge.NewCache(kb, knowledge.CacheOptions{
		URL:    cfg.RedisURL,
		TTL:    cfg.GetTTL(),
		Logger: logger,
	})
	if err != nil {
		// The file alone still serves lookups.
		logger.Warn("knowledge cache unavailable", "error", err)
		*wired = append(*wired, WithKnowledge(kb))
		return nil
	}
	*wired = append(*wired,
		WithKnowledge(cache),
		WithCloser("knowledge-cache", cache),
		WithHealthCheck(health.Check{Name: "knowledge-cache", Target: health.PingFunc(cache.Ping), Optional: true}),
	)
	return nil
}
