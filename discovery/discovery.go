// Package discovery locates the remote services the inventory reads from.
//
// Service instances announce themselves in etcd under
// /<namespace>/services/<service>/<instance-id> with a JSON Endpoint value,
// normally bound to a lease so that crashed instances disappear on their own.
// Client reads those entries; Static serves fixed URLs when no etcd cluster
// is configured.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Service names.
const (
	ServiceGraph       = "graph"
	ServiceObjectStore = "objectstore"
	ServiceKatalogus   = "katalogus"
)

var (
	// ErrNoEndpoints is returned when no usable instance of a service is known.
	ErrNoEndpoints = errors.New("no endpoints for service")

	// ErrClosed is returned by a closed Client.
	ErrClosed = errors.New("discovery client is closed")
)

// Endpoint is one announced instance of a service.
type Endpoint struct {
	Service    string            `json:"service"`
	InstanceID string            `json:"instance_id"`
	URL        string            `json:"url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	StartedAt  time.Time         `json:"started_at"`
}

// Resolver returns the base URL of a service.
type Resolver interface {
	Resolve(ctx context.Context, service string) (string, error)
}

// Static resolves services from a fixed map.
type Static map[string]string

// Resolve implements Resolver.
func (s Static) Resolve(_ context.Context, service string) (string, error) {
	if u, ok := s[service]; ok && u != "" {
		return u, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNoEndpoints, service)
}

// Config holds etcd connection settings.
type Config struct {
	Endpoints   []string
	Namespace   string
	DialTimeout time.Duration
	TLS         *TLSConfig
	Logger      *slog.Logger
}

// Client reads service endpoints from etcd.
//
// Thread-safety: All methods are safe for concurrent use.
type Client struct {
	client    *clientv3.Client
	namespace string
	logger    *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewClient connects to etcd and verifies connectivity.
// The client must be closed using Close() when no longer needed.
func NewClient(cfg Config) (*Client, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("discovery endpoints cannot be empty")
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "inventory"
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	clientCfg := clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	}
	if cfg.TLS != nil {
		tlsConfig, err := cfg.TLS.ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
		clientCfg.TLS = tlsConfig
	}

	cli, err := clientv3.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if _, err := cli.Get(ctx, "health-check"); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		_ = cli.Close()
		return nil, fmt.Errorf("etcd health check failed: %w", err)
	}

	return &Client{
		client:    cli,
		namespace: cfg.Namespace,
		logger:    cfg.Logger.With("component", "discovery"),
	}, nil
}

// Endpoints returns every announced instance of service, ordered by instance id.
func (c *Client) Endpoints(ctx context.Context, service string) ([]Endpoint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrClosed
	}

	resp, err := c.client.Get(ctx, servicePrefix(c.namespace, service), clientv3.WithPrefix())
	if err != nil {
		return nil, fmt.Errorf("failed to discover %s: %w", service, err)
	}
	return decodeEndpoints(resp.Kvs, c.logger), nil
}

// Resolve implements Resolver. The instance with the lowest id wins so that
// repeated resolutions are stable.
func (c *Client) Resolve(ctx context.Context, service string) (string, error) {
	endpoints, err := c.Endpoints(ctx, service)
	if err != nil {
		return "", err
	}
	if len(endpoints) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoEndpoints, service)
	}
	return endpoints[0].URL, nil
}

// Announce publishes ep under a lease of ttl. The entry disappears when the
// lease expires; Announce does not keep it alive.
func (c *Client) Announce(ctx context.Context, ep Endpoint, ttl time.Duration) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	if err := validateEndpoint(ep); err != nil {
		return err
	}

	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	lease, err := c.client.Grant(ctx, seconds)
	if err != nil {
		return fmt.Errorf("failed to create lease: %w", err)
	}
	data, err := json.Marshal(ep)
	if err != nil {
		return fmt.Errorf("failed to marshal endpoint: %w", err)
	}
	key := instanceKey(c.namespace, ep.Service, ep.InstanceID)
	if _, err := c.client.Put(ctx, key, string(data), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("failed to announce %s: %w", ep.Service, err)
	}
	return nil
}

// Close releases the etcd connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// servicePrefix returns /namespace/services/service/.
func servicePrefix(namespace, service string) string {
	return fmt.Sprintf("/%s/services/%s/", namespace, service)
}

func instanceKey(namespace, service, instanceID string) string {
	return servicePrefix(namespace, service) + instanceID
}

func validateEndpoint(ep Endpoint) error {
	if ep.Service == "" || ep.InstanceID == "" {
		return errors.New("endpoint needs a service and an instance id")
	}
	u, err := url.Parse(ep.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("endpoint %s/%s has an invalid url %q", ep.Service, ep.InstanceID, ep.URL)
	}
	return nil
}

// decodeEndpoints parses etcd values, skipping entries that are not valid
// endpoints.
func decodeEndpoints(kvs []*mvccpb.KeyValue, logger *slog.Logger) []Endpoint {
	out := make([]Endpoint, 0, len(kvs))
	for _, kv := range kvs {
		var ep Endpoint
		if err := json.Unmarshal(kv.Value, &ep); err != nil {
			logger.Warn("skipping undecodable endpoint", "key", string(kv.Key), "error", err)
			continue
		}
		if err := validateEndpoint(ep); err != nil {
			logger.Warn("skipping invalid endpoint", "key", string(kv.Key), "error", err)
			continue
		}
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InstanceID < out[j].InstanceID
	})
	return out
}
