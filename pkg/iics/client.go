package iics

import (
	"context"
	"encoding/json"
	"net/url"
	"time"
)

// ConnectionsClient provides access to connection resources.
type ConnectionsClient interface {
	List(ctx context.Context) ([]Connection, error)
	Get(ctx context.Context, id string) (*Connection, error)
	Delete(ctx context.Context, id string) error
}

// RuntimeEnvironmentsClient provides access to runtime environments.
type RuntimeEnvironmentsClient interface {
	List(ctx context.Context) ([]RuntimeEnvironment, error)
}

// AgentsClient provides access to Secure Agents.
type AgentsClient interface {
	List(ctx context.Context) ([]Agent, error)
}

// ResourceClients provides access to all resource-specific clients.
type ResourceClients interface {
	Connections() ConnectionsClient
	RuntimeEnvironments() RuntimeEnvironmentsClient
	Agents() AgentsClient
}

// SessionClient exposes the session lifecycle.
type SessionClient interface {
	// Login performs the credential exchange and installs the resulting
	// session, replacing any prior one.
	Login(ctx context.Context) (*Session, error)

	// Logout ends the current session. Failures are logged, never returned;
	// the session is cleared in all cases. Logging out without a session is
	// a no-op.
	Logout(ctx context.Context)

	// Session returns the installed session, or an auth error when none is.
	Session() (*Session, error)

	// BaseURL returns the live session's base URL, or an auth error when no
	// session is installed.
	BaseURL() (string, error)
}

// RawClient issues authenticated calls against caller-specified paths,
// bypassing the typed endpoint layer but not the reauthentication loop or
// error classification. Paths are relative to the session base URL.
type RawClient interface {
	RawGet(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
	RawPost(ctx context.Context, path string, body interface{}) (json.RawMessage, error)
}

// Client is the full IICS API client surface.
type Client interface {
	ResourceClients
	SessionClient
	RawClient

	// Close releases the pooled transport. It is idempotent and never
	// attempts network calls; use iicsclient.WithClient for scoped
	// logout-then-close behavior.
	Close() error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration. It is read once at construction
// time and immutable for the client's lifetime.
type Config struct {
	// LoginURL is the IICS login URL, or a region code ("us", "em", "ap")
	// that iicsclient.New resolves to the regional login host.
	LoginURL string `mapstructure:"login_url" yaml:"login_url"`

	// Username is the IICS account username.
	Username string `mapstructure:"username" yaml:"username"`

	// Password is the IICS account password.
	Password string `mapstructure:"password" yaml:"password"`

	// HTTPTimeout is the fixed overall timeout applied to every HTTP call.
	// Zero selects the default (30s).
	HTTPTimeout time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`

	// RetryMax bounds transport-level retries for transient failures
	// (connection errors, 429, 5xx). Zero selects the default (3). This is
	// independent of MaxReauthAttempts: transport retries handle
	// connection-level failures, reauthentication handles session expiry.
	RetryMax int `mapstructure:"retry_max" yaml:"retry_max"`

	// RetryWaitMin is the minimum backoff between transport retries.
	RetryWaitMin time.Duration `mapstructure:"retry_wait_min" yaml:"retry_wait_min"`

	// RetryWaitMax is the maximum backoff between transport retries.
	RetryWaitMax time.Duration `mapstructure:"retry_wait_max" yaml:"retry_wait_max"`

	// MaxReauthAttempts bounds how many times an expired session is
	// re-established for a single logical call. Zero selects the default
	// (2). The bound counts re-logins: a call is sent at most
	// MaxReauthAttempts+1 times.
	MaxReauthAttempts int `mapstructure:"max_reauth_attempts" yaml:"max_reauth_attempts"`

	// DisableHTTP2 turns off HTTP/2 on the pooled transport.
	DisableHTTP2 bool `mapstructure:"disable_http2" yaml:"disable_http2"`

	// MaxConnections caps concurrent connections in the pool. Zero selects
	// the default (10).
	MaxConnections int `mapstructure:"max_connections" yaml:"max_connections"`

	// MaxIdleConnections caps idle keep-alive connections. Zero selects the
	// default (5).
	MaxIdleConnections int `mapstructure:"max_idle_connections" yaml:"max_idle_connections"`

	// Debug enables verbose HTTP request/response logging when a Logger is
	// provided.
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// UserAgent overrides the default User-Agent header.
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`

	// Logger is the structured logger used by the HTTP layer and session
	// manager. Nil disables logging.
	Logger Logger `mapstructure:"-" yaml:"-"`

	// Cache configures read caching of GET responses. Nil disables caching.
	Cache *CacheConfig `mapstructure:"cache" yaml:"cache,omitempty"`
}
