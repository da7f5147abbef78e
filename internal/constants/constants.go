package constants

import "time"

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default overall timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as login.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry and reauthentication bounds.
const (
	// DefaultRetryMax is the default maximum number of transport-level retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum backoff between transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum backoff between transport retries.
	DefaultRetryWaitMax = 10 * time.Second

	// DefaultMaxReauthAttempts is the default number of re-login attempts
	// after the server reports an expired session. The bound counts
	// re-logins, not request sends: a call is sent at most
	// DefaultMaxReauthAttempts+1 times.
	DefaultMaxReauthAttempts = 2
)

// Connection pooling limits.
const (
	// DefaultMaxConnections is the default maximum number of concurrent
	// connections in the transport pool.
	DefaultMaxConnections = 10

	// DefaultMaxIdleConnections is the default number of idle keep-alive
	// connections retained by the pool.
	DefaultMaxIdleConnections = 5
)

// IICS API surface.
const (
	// APIv2Prefix is the URL path prefix for v2 platform calls.
	APIv2Prefix = "/api/v2"

	// APIv3Prefix is the URL path prefix for v3 platform calls.
	APIv3Prefix = "/api/v3"

	// LoginPath is the path, relative to the login URL, of the credential
	// exchange endpoint.
	LoginPath = "/ma/api/v2/user/login"

	// LogoutPath is the path, relative to the login URL, that ends a session.
	LogoutPath = "/ma/api/v2/user/logout"

	// SessionHeaderV2 carries the session token on v2 calls.
	SessionHeaderV2 = "icSessionId"

	// SessionHeaderV3 carries the session token on v3 calls. The v2/v3 header
	// names differ on the wire; both must be preserved exactly.
	SessionHeaderV3 = "INFA-SESSION-ID"
)

// Error formatting.
const (
	// BodyTruncateLimit is the number of response body bytes included in
	// human-readable error messages. The full body stays on the error value.
	BodyTruncateLimit = 500
)

// Cache defaults.
const (
	// DefaultCacheSize is the default entry limit for the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default time-to-live for cached responses.
	DefaultCacheTTL = 5 * time.Minute
)
