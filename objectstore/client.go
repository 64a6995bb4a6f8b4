// Package objectstore is a client for the raw-data object store that keeps
// boefje output and normalizer metadata.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/zero-day-ai/inventory/transport"
)

var (
	// ErrInvalidTaskID is returned for task ids that are not UUIDs.
	ErrInvalidTaskID = errors.New("invalid task id")

	// ErrMissingCredentials is returned when the client has no username or password.
	ErrMissingCredentials = errors.New("object store credentials are required")

	// ErrMalformedMeta indicates metadata without the expected structure.
	ErrMalformedMeta = errors.New("malformed normalizer meta")

	// ErrNoToken indicates a login response without an access token.
	ErrNoToken = errors.New("login returned no access token")
)

// Credentials authenticate against the object store.
type Credentials struct {
	Username string
	Password string
}

// Client logs in with username and password and reads normalizer metadata
// with the resulting bearer token. A request rejected with 401 triggers one
// fresh login and a single retry.
type Client struct {
	http   *transport.Client
	creds  Credentials
	logger *slog.Logger

	mu    sync.Mutex
	token string
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

// New returns a client using http for requests.
func New(http *transport.Client, creds Credentials, opts ...Option) (*Client, error) {
	if http == nil {
		return nil, errors.New("objectstore: nil transport client")
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrMissingCredentials
	}
	c := &Client{http: http, creds: creds, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "objectstore")
	return c, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login fetches a new access token, replacing the current one.
func (c *Client) Login(ctx context.Context) error {
	var resp tokenResponse
	err := c.http.Do(ctx, http.MethodPost, "/token", nil, &resp,
		transport.WithFormBody(map[string]string{
			"username": c.creds.Username,
			"password": c.creds.Password,
		}))
	if err != nil {
		return fmt.Errorf("object store login: %w", err)
	}
	if resp.AccessToken == "" {
		return ErrNoToken
	}

	c.mu.Lock()
	c.token = resp.AccessToken
	c.mu.Unlock()
	c.logger.Debug("logged in")
	return nil
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// NormalizerMeta returns the metadata of the normalizer run taskID.
// It logs in first when the client holds no token yet.
func (c *Client) NormalizerMeta(ctx context.Context, taskID string) (NormalizerMeta, error) {
	id, err := uuid.Parse(taskID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTaskID, taskID)
	}

	var meta NormalizerMeta
	path := "/bytes/normalizer_meta/" + url.PathEscape(id.String())
	if err := c.authorized(ctx, http.MethodGet, path, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}

func (c *Client) authorized(ctx context.Context, method, path string, out any) error {
	if c.currentToken() == "" {
		if err := c.Login(ctx); err != nil {
			return err
		}
	}

	err := c.http.Do(ctx, method, path, nil, out, transport.WithBearer(c.currentToken()))
	if se, ok := transport.AsStatus(err); ok && se.Unauthorized() {
		c.logger.Info("token rejected, logging in again", "path", path)
		if err := c.Login(ctx); err != nil {
			return err
		}
		err = c.http.Do(ctx, method, path, nil, out, transport.WithBearer(c.currentToken()))
	}
	return err
}

// Health checks that the object store is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.http.Do(ctx, http.MethodGet, "/health", nil, nil)
}
