package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheOptions configures the Redis connection of a Cache.
type CacheOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TTL bounds how long an entry is served from Redis. Zero means one hour.
	TTL time.Duration

	// Prefix is prepended to every key. Defaults to "inventory:knowledge:".
	Prefix string

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	Logger *slog.Logger
}

// Cache is a read-through Redis cache in front of a Source. Unknown ids
// are cached too, so a miss in the source is not repeated until the TTL
// expires. When Redis is unavailable the source is used directly.
type Cache struct {
	client *redis.Client
	source Source
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// cached is the stored form; Known distinguishes unknown ids from empty entries.
type cached struct {
	Known bool  `json:"known"`
	Entry Entry `json:"entry,omitempty"`
}

// NewCache connects to Redis and returns a cache over source.
func NewCache(source Source, opts CacheOptions) (*Cache, error) {
	if source == nil {
		return nil, errors.New("knowledge: nil source")
	}
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.TTL == 0 {
		opts.TTL = time.Hour
	}
	if opts.Prefix == "" {
		opts.Prefix = "inventory:knowledge:"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client: client,
		source: source,
		ttl:    opts.TTL,
		prefix: opts.Prefix,
		logger: opts.Logger.With("component", "knowledge"),
	}, nil
}

// Lookup implements Source.
func (c *Cache) Lookup(ctx context.Context, informationID string) (Entry, error) {
	key := c.prefix + informationID

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var hit cached
		if err := json.Unmarshal(data, &hit); err == nil {
			if !hit.Known {
				return nil, nil
			}
			return hit.Entry, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("knowledge cache read failed", "key", key, "error", err)
	}

	entry, err := c.source.Lookup(ctx, informationID)
	if err != nil {
		return nil, err
	}

	value, err := json.Marshal(cached{Known: entry != nil, Entry: entry})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal knowledge entry: %w", err)
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Warn("knowledge cache write failed", "key", key, "error", err)
	}
	return entry, nil
}

// Invalidate drops the cached entry for informationID.
func (c *Cache) Invalidate(ctx context.Context, informationID string) error {
	if err := c.client.Del(ctx, c.prefix+informationID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", informationID, err)
	}
	return nil
}

// Ping checks the Redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
