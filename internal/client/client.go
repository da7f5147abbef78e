// Package client provides the concrete IICS API client implementation.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	internalhttp "github.com/fivetwenty-io/iics-client/internal/http"
	"github.com/fivetwenty-io/iics-client/internal/session"
	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

// Client implements the iics.Client interface.
type Client struct {
	httpClient *internalhttp.Client
	sessions   *session.Manager
	cache      iics.Cache
	closeOnce  sync.Once

	connections *ConnectionsClient
	runtimeEnvs *RuntimeEnvironmentsClient
	agents      *AgentsClient
}

// New creates a new IICS API client from validated configuration.
func New(config *iics.Config) (*Client, error) {
	if config == nil {
		return nil, iics.ErrConfigRequired
	}

	retryClient := internalhttp.NewPooledClient(config)
	sessions := session.NewManager(config.LoginURL, config.Username, config.Password, retryClient, config.Logger)

	cache, err := newCache(config.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	opts := []internalhttp.Option{
		internalhttp.WithLogger(config.Logger),
		internalhttp.WithDebug(config.Debug),
	}
	if config.UserAgent != "" {
		opts = append(opts, internalhttp.WithUserAgent(config.UserAgent))
	}
	if config.MaxReauthAttempts > 0 {
		opts = append(opts, internalhttp.WithMaxReauthAttempts(config.MaxReauthAttempts))
	}
	if cache != nil {
		opts = append(opts, internalhttp.WithCache(cache))
	}

	httpClient := internalhttp.NewClient(retryClient, sessions, opts...)

	c := &Client{
		httpClient: httpClient,
		sessions:   sessions,
		cache:      cache,
	}

	c.connections = NewConnectionsClient(httpClient)
	c.runtimeEnvs = NewRuntimeEnvironmentsClient(httpClient)
	c.agents = NewAgentsClient(httpClient)

	return c, nil
}

func newCache(config *iics.CacheConfig) (iics.Cache, error) {
	if config == nil {
		return nil, nil
	}
	return iics.NewCacheFromConfig(config)
}

// Connections returns the connections resource client.
func (c *Client) Connections() iics.ConnectionsClient {
	return c.connections
}

// RuntimeEnvironments returns the runtime environments resource client.
func (c *Client) RuntimeEnvironments() iics.RuntimeEnvironmentsClient {
	return c.runtimeEnvs
}

// Agents returns the Secure Agents resource client.
func (c *Client) Agents() iics.AgentsClient {
	return c.agents
}

// Login establishes a session. Any cached responses belong to the prior
// session and are dropped.
func (c *Client) Login(ctx context.Context) (*iics.Session, error) {
	sess, err := c.sessions.Login(ctx)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Flush()
	}
	return sess, nil
}

// Logout ends the current session, clearing it even when the server call
// fails.
func (c *Client) Logout(ctx context.Context) {
	c.sessions.Logout(ctx)
}

// Session returns the current session.
func (c *Client) Session() (*iics.Session, error) {
	return c.sessions.Current()
}

// BaseURL returns the current session's server URL.
func (c *Client) BaseURL() (string, error) {
	return c.sessions.BaseURL()
}

// RawGet issues an authenticated GET against a server-relative path.
func (c *Client) RawGet(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	resp, err := c.httpClient.Raw(ctx, "GET", path, query, nil)
	if err != nil {
		return nil, err
	}
	return rawPayload(resp), nil
}

// RawPost issues an authenticated POST against a server-relative path.
func (c *Client) RawPost(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	resp, err := c.httpClient.Raw(ctx, "POST", path, nil, body)
	if err != nil {
		return nil, err
	}
	return rawPayload(resp), nil
}

// Close releases pooled connections and the cache. It is idempotent and
// does not log out; pair it with Logout or use iicsclient.WithClient.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.httpClient.CloseIdleConnections()
		if c.cache != nil {
			err = c.cache.Close()
		}
	})
	return err
}

func rawPayload(resp *internalhttp.Response) json.RawMessage {
	if len(resp.Body) == 0 {
		return nil
	}
	return json.RawMessage(resp.Body)
}
