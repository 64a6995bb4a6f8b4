// Package config loads the inventory configuration from a YAML file and
// INVENTORY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/inventory/params"
	"github.com/zero-day-ai/inventory/transport"
)

// ErrInvalidConfig indicates a configuration that failed validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INVENTORY_"

// Config is the complete inventory configuration.
type Config struct {
	// Organization is the code of the organization all reads are scoped to.
	Organization string `yaml:"organization" validate:"required,max=32"`

	Graph       GraphConfig       `yaml:"graph"`
	ObjectStore ObjectStoreConfig `yaml:"objectstore"`
	Katalogus   KatalogusConfig   `yaml:"katalogus"`
	Depth       DepthConfig       `yaml:"depth"`
	Knowledge   KnowledgeConfig   `yaml:"knowledge"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
	Breaker     BreakerConfig     `yaml:"breaker"`
}

// GraphConfig locates the knowledge-graph service.
type GraphConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`

	// Timeout is a Go duration string (e.g., "10s"). Default: 30s
	Timeout string `yaml:"timeout,omitempty"`
}

// GetTimeout returns the request timeout or the default value.
func (g GraphConfig) GetTimeout() time.Duration {
	return parseDuration(g.Timeout, 30*time.Second)
}

// ObjectStoreConfig locates and authenticates against the object store.
type ObjectStoreConfig struct {
	URL      string `yaml:"url" validate:"omitempty,url"`
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

// KatalogusConfig locates the plugin catalog.
type KatalogusConfig struct {
	URL string `yaml:"url" validate:"omitempty,url"`
}

// DepthConfig bounds tree depth requests.
type DepthConfig struct {
	Default int `yaml:"default" validate:"min=1"`
	Max     int `yaml:"max" validate:"min=1,gtefield=Default"`
}

// KnowledgeConfig configures the knowledge base.
type KnowledgeConfig struct {
	// File is a YAML knowledge base. Empty disables knowledge-base merging.
	File string `yaml:"file,omitempty"`

	// RedisURL enables a read-through cache in front of File.
	RedisURL string `yaml:"redis_url,omitempty" validate:"omitempty,url"`

	// TTL is a Go duration string. Default: 1h
	TTL string `yaml:"ttl,omitempty"`
}

// GetTTL returns the cache TTL or the default value.
func (k KnowledgeConfig) GetTTL() time.Duration {
	return parseDuration(k.TTL, time.Hour)
}

// DiscoveryConfig enables service discovery through etcd. Service URLs found
// in etcd take the place of missing URLs in the file.
type DiscoveryConfig struct {
	Endpoints []string `yaml:"endpoints,omitempty" validate:"dive,hostname_port|url"`
	Namespace string   `yaml:"namespace,omitempty"`

	// DialTimeout is a Go duration string. Default: 5s
	DialTimeout string `yaml:"dial_timeout,omitempty"`

	TLS DiscoveryTLS `yaml:"tls,omitempty"`
}

// DiscoveryTLS holds client certificates for etcd. TLS is used when all
// three files are set.
type DiscoveryTLS struct {
	CertFile string `yaml:"cert_file,omitempty" validate:"required_with=KeyFile CAFile"`
	KeyFile  string `yaml:"key_file,omitempty" validate:"required_with=CertFile CAFile"`
	CAFile   string `yaml:"ca_file,omitempty" validate:"required_with=CertFile KeyFile"`
}

// Enabled reports whether TLS material is configured.
func (t DiscoveryTLS) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != "" && t.CAFile != ""
}

// Enabled reports whether etcd endpoints are configured.
func (d DiscoveryConfig) Enabled() bool {
	return len(d.Endpoints) > 0
}

// GetDialTimeout returns the dial timeout or the default value.
func (d DiscoveryConfig) GetDialTimeout() time.Duration {
	return parseDuration(d.DialTimeout, 5*time.Second)
}

// BreakerConfig tunes the circuit breakers of all remote services.
type BreakerConfig struct {
	Disabled     bool    `yaml:"disabled,omitempty"`
	MaxRequests  uint32  `yaml:"max_requests,omitempty"`
	Interval     string  `yaml:"interval,omitempty"`
	Timeout      string  `yaml:"timeout,omitempty"`
	FailureRatio float64 `yaml:"failure_ratio,omitempty" validate:"gte=0,lte=1"`
	MinRequests  uint32  `yaml:"min_requests,omitempty"`
}

// Settings converts the configuration to transport settings, filling unset
// values from transport.DefaultBreakerSettings.
func (b BreakerConfig) Settings() transport.BreakerSettings {
	s := transport.DefaultBreakerSettings()
	s.Disabled = b.Disabled
	if b.MaxRequests > 0 {
		s.MaxRequests = b.MaxRequests
	}
	s.Interval = parseDuration(b.Interval, s.Interval)
	s.Timeout = parseDuration(b.Timeout, s.Timeout)
	if b.FailureRatio > 0 {
		s.FailureRatio = b.FailureRatio
	}
	if b.MinRequests > 0 {
		s.MinRequests = b.MinRequests
	}
	return s
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Default returns a configuration with every default filled in and no
// service locations.
func Default() *Config {
	return &Config{
		Depth: DepthConfig{Default: params.DefaultDepth, Max: params.MaxDepth},
	}
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with a custom environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	set("ORGANIZATION", &c.Organization)
	set("GRAPH_URL", &c.Graph.URL)
	set("GRAPH_TIMEOUT", &c.Graph.Timeout)
	set("OBJECTSTORE_URL", &c.ObjectStore.URL)
	set("OBJECTSTORE_USERNAME", &c.ObjectStore.Username)
	set("OBJECTSTORE_PASSWORD", &c.ObjectStore.Password)
	set("KATALOGUS_URL", &c.Katalogus.URL)
	set("KNOWLEDGE_FILE", &c.Knowledge.File)
	set("KNOWLEDGE_REDIS_URL", &c.Knowledge.RedisURL)
	setInt("DEPTH_DEFAULT", &c.Depth.Default)
	setInt("DEPTH_MAX", &c.Depth.Max)

	var endpoints string
	set("DISCOVERY_ENDPOINTS", &endpoints)
	if endpoints != "" {
		c.Discovery.Endpoints = nil
		for _, e := range strings.Split(endpoints, ",") {
			if e = strings.TrimSpace(e); e != "" {
				c.Discovery.Endpoints = append(c.Discovery.Endpoints, e)
			}
		}
	}
	set("DISCOVERY_NAMESPACE", &c.Discovery.Namespace)
}
