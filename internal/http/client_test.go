package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

type fakeSessions struct {
	mu         sync.Mutex
	baseURL    string
	sessionID  string
	loginCalls int
	loginErr   error
}

func (f *fakeSessions) BaseURL() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.baseURL, nil
}

func (f *fakeSessions) AuthHeader(version iics.APIVersion) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return version.SessionHeader(), f.sessionID, nil
}

func (f *fakeSessions) Login(ctx context.Context) (*iics.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.sessionID = "renewed-session"
	return &iics.Session{SessionID: f.sessionID}, nil
}

func (f *fakeSessions) logins() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, msg)
}

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.record(msg) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.record(msg) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.record(msg) }

func newTestRetryClient() *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = 2
	rc.RetryWaitMin = time.Millisecond
	rc.RetryWaitMax = 2 * time.Millisecond
	return rc
}

func newTestClient(serverURL string, opts ...Option) (*Client, *fakeSessions) {
	sessions := &fakeSessions{baseURL: serverURL, sessionID: "initial-session"}
	return NewClient(newTestRetryClient(), sessions, opts...), sessions
}

func TestClientGet(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/connection", r.URL.Path)
		assert.Equal(t, "initial-session", r.Header.Get("icSessionId"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	resp, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []byte(`[]`), resp.Body)
}

func TestClientV3SessionHeader(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/objects", r.URL.Path)
		assert.Equal(t, "initial-session", r.Header.Get("INFA-SESSION-ID"))
		assert.Empty(t, r.Header.Get("icSessionId"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	_, err := client.Get(context.Background(), iics.APIVersionV3, "/objects", nil)
	require.NoError(t, err)
}

func TestClientQueryParameters(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "located", r.URL.Query().Get("region"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	query := url.Values{}
	query.Set("region", "located")
	query.Set("limit", "50")

	_, err := client.Get(context.Background(), iics.APIVersionV2, "/agent", query)
	require.NoError(t, err)
}

func TestClientPostBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"test-conn"}`, string(body))

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	resp, err := client.Post(context.Background(), iics.APIVersionV2, "/connection", map[string]string{
		"name": "test-conn",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestClientNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such connection"}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	resp, err := client.Get(context.Background(), iics.APIVersionV2, "/connection/missing", nil)
	require.Error(t, err)
	assert.True(t, iics.IsNotFound(err))
	assert.Contains(t, err.Error(), "HTTP 404")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClientNoRetryOnBadRequest(t *testing.T) {
	t.Parallel()

	var requests int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	_, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, requests)
}

func TestClientRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var requests int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		n := requests
		mu.Unlock()

		if n < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	resp, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, requests)
}

func TestClientCustomHeadersWin(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/xml", r.Header.Get("Accept"))
		assert.Equal(t, "custom-value", r.Header.Get("X-Custom"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	_, err := client.Do(context.Background(), &Request{
		Method:  http.MethodGet,
		Path:    "/connection",
		Version: iics.APIVersionV2,
		Prefix:  iics.APIVersionV2.Prefix(),
		Headers: map[string]string{
			"Accept":   "application/xml",
			"X-Custom": "custom-value",
		},
	})
	require.NoError(t, err)
}

func TestClientDebugLogging(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	logger := &recordingLogger{}
	client, _ := newTestClient(server.URL, WithLogger(logger), WithDebug(true))

	_, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.NoError(t, err)

	messages := logger.messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "HTTP Request", messages[0])
	assert.Equal(t, "HTTP Response", messages[1])
}

func TestClientReauthenticatesOnExpiredSession(t *testing.T) {
	t.Parallel()

	var requests int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()

		if r.Header.Get("icSessionId") != "renewed-session" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"c1"}`))
	}))
	defer server.Close()

	client, sessions := newTestClient(server.URL)

	resp, err := client.Get(context.Background(), iics.APIVersionV2, "/connection/c1", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, sessions.logins())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, requests)
}

func TestClientReauthExhaustedReturnsOriginalError(t *testing.T) {
	t.Parallel()

	var requests int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`session expired`))
	}))
	defer server.Close()

	client, sessions := newTestClient(server.URL, WithMaxReauthAttempts(2))

	_, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.Error(t, err)
	assert.True(t, iics.IsAuth(err))
	assert.Contains(t, err.Error(), "HTTP 403")

	// Two re-logins means three sends in total.
	assert.Equal(t, 2, sessions.logins())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, requests)
}

func TestClientReauthDisabled(t *testing.T) {
	t.Parallel()

	var requests int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, sessions := newTestClient(server.URL, WithMaxReauthAttempts(0))

	_, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.Error(t, err)
	assert.True(t, iics.IsAuth(err))
	assert.Equal(t, 0, sessions.logins())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, requests)
}

func TestClientLoginFailureSurfacesOriginalError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`token invalid`))
	}))
	defer server.Close()

	client, sessions := newTestClient(server.URL)
	sessions.loginErr = iics.NewAuthError("bad credentials")

	_, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.Error(t, err)
	assert.True(t, iics.IsAuth(err))
	assert.Contains(t, err.Error(), "HTTP 401")
	assert.Contains(t, err.Error(), "token invalid")
	assert.NotContains(t, err.Error(), "bad credentials")
	assert.Equal(t, 1, sessions.logins())
}

func TestClientCachesGETResponses(t *testing.T) {
	t.Parallel()

	var requests int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[{"id":"c1"}]`))
	}))
	defer server.Close()

	cache := iics.NewMemoryCache(&iics.MemoryCacheConfig{MaxSize: 10, TTL: time.Minute})
	client, _ := newTestClient(server.URL, WithCache(cache))

	first, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.NoError(t, err)

	second, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.NoError(t, err)
	assert.Equal(t, first.Body, second.Body)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, requests)
}

func TestClientCacheFlushedOnReauth(t *testing.T) {
	t.Parallel()

	var requests int
	var mu sync.Mutex

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()

		if r.URL.Path == "/api/v2/agent" && r.Header.Get("icSessionId") != "renewed-session" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cache := iics.NewMemoryCache(&iics.MemoryCacheConfig{MaxSize: 10, TTL: time.Minute})
	client, _ := newTestClient(server.URL, WithCache(cache))

	// Prime the cache under the old session.
	_, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.NoError(t, err)

	// The expired session forces a re-login, which flushes the cache.
	_, err = client.Get(context.Background(), iics.APIVersionV2, "/agent", nil)
	require.NoError(t, err)

	_, ok := cache.Get("GET " + server.URL + "/api/v2/connection")
	assert.False(t, ok)
}

func TestClientRawRequest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/saas/api/v2/custom", r.URL.Path)
		assert.Equal(t, "initial-session", r.Header.Get("INFA-SESSION-ID"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	resp, err := client.Raw(context.Background(), http.MethodGet, "/saas/api/v2/custom", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"ok":true}`), resp.Body)
}

func TestClientRequestInterceptor(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "trace-123", r.Header.Get("X-Trace-ID"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	chain := iics.NewInterceptorChain()
	chain.AddRequestInterceptor(iics.HeaderInterceptor(map[string]string{
		"X-Trace-ID": "trace-123",
	}))

	client, _ := newTestClient(server.URL, WithInterceptors(chain))

	_, err := client.Get(context.Background(), iics.APIVersionV2, "/connection", nil)
	require.NoError(t, err)
}
