package http

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/iics-client/internal/constants"
	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

// NewPooledClient builds a retrying HTTP client with a connection pool
// sized from the configuration. Zero values fall back to the package
// defaults so a sparse Config still yields a usable client.
func NewPooledClient(config *iics.Config) *retryablehttp.Client {
	timeout := config.HTTPTimeout
	if timeout <= 0 {
		timeout = constants.DefaultHTTPTimeout
	}

	maxConns := config.MaxConnections
	if maxConns <= 0 {
		maxConns = constants.DefaultMaxConnections
	}

	maxIdle := config.MaxIdleConnections
	if maxIdle <= 0 {
		maxIdle = constants.DefaultMaxIdleConnections
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		ForceAttemptHTTP2:   !config.DisableHTTP2,
		MaxConnsPerHost:     maxConns,
		MaxIdleConns:        maxIdle,
		MaxIdleConnsPerHost: maxIdle,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: constants.ShortHTTPTimeout,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
	// retryablehttp logs through its own interface; the executor does
	// its own debug logging instead.
	retryClient.Logger = nil

	retryClient.RetryMax = config.RetryMax
	if retryClient.RetryMax <= 0 {
		retryClient.RetryMax = constants.DefaultRetryMax
	}

	retryClient.RetryWaitMin = config.RetryWaitMin
	if retryClient.RetryWaitMin <= 0 {
		retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	}

	retryClient.RetryWaitMax = config.RetryWaitMax
	if retryClient.RetryWaitMax <= 0 {
		retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	}

	return retryClient
}
