// Package http implements the request executor shared by all resource
// clients. It layers session headers, interceptors, response caching,
// and a bounded reauthentication loop on top of a retrying transport.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/iics-client/internal/constants"
	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

// SessionSource supplies the live session state a request needs. It is
// implemented by the session manager; requests never hold a session of
// their own, so a re-login is visible to every in-flight caller.
type SessionSource interface {
	// BaseURL returns the server URL of the current session.
	BaseURL() (string, error)
	// AuthHeader returns the session header name and value for the
	// given API version.
	AuthHeader(version iics.APIVersion) (name, value string, err error)
	// Login establishes a fresh session, replacing the current one.
	Login(ctx context.Context) (*iics.Session, error)
}

// Request describes an HTTP request to the API.
type Request struct {
	Method  string
	Path    string
	Version iics.APIVersion
	// Prefix is prepended to Path. Typed clients pass the version
	// prefix; raw passthrough requests leave it empty so callers
	// control the full path.
	Prefix  string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is the outcome of an executed request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	URL        string
}

// Client executes requests against the API.
type Client struct {
	retry     *retryablehttp.Client
	sessions  SessionSource
	logger    iics.Logger
	debug     bool
	userAgent string
	maxReauth int
	chain     *iics.InterceptorChain
	cache     iics.Cache
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger for debug output.
func WithLogger(logger iics.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithMaxReauthAttempts bounds how many times an expired session is
// re-established before the original error is surfaced. The request is
// sent at most one more time than this bound.
func WithMaxReauthAttempts(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxReauth = n
		}
	}
}

// WithInterceptors installs an interceptor chain run around every request.
func WithInterceptors(chain *iics.InterceptorChain) Option {
	return func(c *Client) {
		c.chain = chain
	}
}

// WithCache installs a response cache for GET requests. The cache is
// flushed whenever a new session is established.
func WithCache(cache iics.Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// NewClient creates a request executor bound to a session source.
func NewClient(retryClient *retryablehttp.Client, sessions SessionSource, opts ...Option) *Client {
	c := &Client{
		retry:     retryClient,
		sessions:  sessions,
		userAgent: "iics-client/1.0",
		maxReauth: constants.DefaultMaxReauthAttempts,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Do executes the request. Transport-level failures and retryable
// status codes are handled by the underlying retrying client; session
// expiry (401/403) triggers a re-login and a resend, bounded by the
// configured reauthentication attempts. When re-login itself fails,
// the error classified from the expired response is returned, not the
// login failure.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL, err := c.buildURL(req)
	if err != nil {
		return nil, err
	}

	cacheKey := req.Method + " " + fullURL
	if cached, ok := c.cacheGet(req.Method, cacheKey); ok {
		return &Response{
			StatusCode: http.StatusOK,
			Body:       cached,
			URL:        fullURL,
		}, nil
	}

	bodyBytes, err := marshalBody(req.Body)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		resp, classified, err := c.send(ctx, req, fullURL, bodyBytes)
		if err != nil {
			return nil, err
		}

		if isSessionExpired(resp.StatusCode) && attempt < c.maxReauth {
			if _, loginErr := c.sessions.Login(ctx); loginErr != nil {
				// Surface what the server said, not why the
				// recovery attempt failed.
				c.logWarn("Reauthentication failed", map[string]interface{}{
					"error": loginErr.Error(),
				})
				return resp, classified
			}
			c.cacheFlush()
			continue
		}

		if classified != nil {
			return resp, classified
		}

		c.cacheSet(req.Method, cacheKey, resp)
		return resp, nil
	}
}

// send performs a single request attempt, returning the response and
// its classified error (nil for 2xx).
func (c *Client) send(ctx context.Context, req *Request, fullURL string, bodyBytes []byte) (*Response, error, error) {
	headers, err := c.buildHeaders(req)
	if err != nil {
		return nil, nil, err
	}

	ireq := &iics.Request{
		Method:   req.Method,
		URL:      fullURL,
		Headers:  headers,
		Body:     bodyBytes,
		Metadata: make(map[string]interface{}),
	}
	if c.chain != nil {
		if err := c.chain.ExecuteRequestInterceptors(ctx, ireq); err != nil {
			return nil, nil, fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	var rawBody interface{}
	if bodyBytes != nil {
		rawBody = bytes.NewReader(bodyBytes)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, rawBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header = ireq.Headers

	httpResp, err := c.retry.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status": httpResp.StatusCode,
			"url":    fullURL,
		})
	}

	classified := iics.Classify(httpResp.StatusCode, string(respBody), fullURL)

	if c.chain != nil {
		iresp := &iics.Response{
			StatusCode: httpResp.StatusCode,
			Headers:    httpResp.Header,
			Body:       respBody,
			Error:      classified,
		}
		if err := c.chain.ExecuteResponseInterceptors(ctx, ireq, iresp); err != nil {
			return nil, nil, fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		URL:        fullURL,
	}, classified, nil
}

// Get executes a GET request under the version prefix.
func (c *Client) Get(ctx context.Context, version iics.APIVersion, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodGet,
		Path:    path,
		Version: version,
		Prefix:  version.Prefix(),
		Query:   query,
	})
}

// Post executes a POST request under the version prefix.
func (c *Client) Post(ctx context.Context, version iics.APIVersion, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPost,
		Path:    path,
		Version: version,
		Prefix:  version.Prefix(),
		Body:    body,
	})
}

// Put executes a PUT request under the version prefix.
func (c *Client) Put(ctx context.Context, version iics.APIVersion, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPut,
		Path:    path,
		Version: version,
		Prefix:  version.Prefix(),
		Body:    body,
	})
}

// Delete executes a DELETE request under the version prefix.
func (c *Client) Delete(ctx context.Context, version iics.APIVersion, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodDelete,
		Path:    path,
		Version: version,
		Prefix:  version.Prefix(),
	})
}

// Raw executes a request against an explicit server-relative path with
// no version prefix applied. The v3 session header is used, matching
// the current API surface.
func (c *Client) Raw(ctx context.Context, method, path string, query url.Values, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  method,
		Path:    path,
		Version: iics.APIVersionV3,
		Query:   query,
		Body:    body,
	})
}

// CloseIdleConnections closes idle keep-alive connections held by the
// pooled transport.
func (c *Client) CloseIdleConnections() {
	c.retry.HTTPClient.CloseIdleConnections()
}

func (c *Client) buildURL(req *Request) (string, error) {
	baseURL, err := c.sessions.BaseURL()
	if err != nil {
		return "", err
	}

	fullURL := baseURL + req.Prefix + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	return fullURL, nil
}

// buildHeaders assembles the header set for one attempt. The session
// header is read fresh each time so a re-login takes effect on the
// resend. Caller-supplied headers are applied last and win.
func (c *Client) buildHeaders(req *Request) (http.Header, error) {
	name, value, err := c.sessions.AuthHeader(req.Version)
	if err != nil {
		return nil, err
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")
	headers.Set("User-Agent", c.userAgent)
	headers.Set(name, value)

	for k, v := range req.Headers {
		headers.Set(k, v)
	}

	return headers, nil
}

func (c *Client) cacheGet(method, key string) ([]byte, bool) {
	if c.cache == nil || method != http.MethodGet {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *Client) cacheSet(method, key string, resp *Response) {
	if c.cache == nil || method != http.MethodGet || resp.StatusCode != http.StatusOK {
		return
	}
	c.cache.Set(key, resp.Body)
}

func (c *Client) cacheFlush() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

func (c *Client) logWarn(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, fields)
	}
}

func marshalBody(body interface{}) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}

func isSessionExpired(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}
