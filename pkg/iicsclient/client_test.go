package iicsclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

func TestResolveLoginURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "us region", input: "us", expected: "https://dm-us.informaticacloud.com"},
		{name: "em region", input: "em", expected: "https://dm-em.informaticacloud.com"},
		{name: "ap region", input: "ap", expected: "https://dm-ap.informaticacloud.com"},
		{name: "region is case insensitive", input: "US", expected: "https://dm-us.informaticacloud.com"},
		{name: "explicit url kept", input: "https://dm-us.informaticacloud.com", expected: "https://dm-us.informaticacloud.com"},
		{name: "trailing slash trimmed", input: "https://example.com/", expected: "https://example.com"},
		{name: "scheme defaulted", input: "example.com", expected: "https://example.com"},
		{name: "http scheme kept", input: "http://localhost:8080", expected: "http://localhost:8080"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ResolveLoginURL(tt.input))
		})
	}
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := New(ctx, nil)
	require.ErrorIs(t, err, iics.ErrConfigRequired)

	_, err = New(ctx, &iics.Config{Username: "u", Password: "p"})
	require.ErrorIs(t, err, iics.ErrLoginURLRequired)

	_, err = New(ctx, &iics.Config{LoginURL: "us", Username: "u"})
	require.ErrorIs(t, err, iics.ErrCredentialsRequired)
}

func newLoginServer(t *testing.T) (*httptest.Server, *int, *sync.Mutex) {
	t.Helper()

	var mu sync.Mutex
	logouts := 0

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ma/api/v2/user/login":
			fmt.Fprintf(w, `{
				"id": "user-1",
				"name": "tester@example.com",
				"orgId": "org-1",
				"serverUrl": %q,
				"icSessionId": "sess-1"
			}`, server.URL)
		case "/ma/api/v2/user/logout":
			mu.Lock()
			logouts++
			mu.Unlock()
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	t.Cleanup(server.Close)

	return server, &logouts, &mu
}

func TestNewLogsIn(t *testing.T) {
	t.Parallel()

	server, _, _ := newLoginServer(t)

	cli, err := New(context.Background(), &iics.Config{
		LoginURL: server.URL,
		Username: "tester@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	defer func() {
		_ = cli.Close()
	}()

	sess, err := cli.Session()
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sess.SessionID)
}

func TestNewClosesOnLoginFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer server.Close()

	_, err := New(context.Background(), &iics.Config{
		LoginURL: server.URL,
		Username: "tester@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.True(t, iics.IsAuth(err))
}

func TestWithClientLogsOutOnSuccess(t *testing.T) {
	t.Parallel()

	server, logouts, mu := newLoginServer(t)

	err := WithClient(context.Background(), &iics.Config{
		LoginURL: server.URL,
		Username: "tester@example.com",
		Password: "secret",
	}, func(cli iics.Client) error {
		_, err := cli.Agents().List(context.Background())
		return err
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, *logouts)
}

func TestWithClientLogsOutOnError(t *testing.T) {
	t.Parallel()

	server, logouts, mu := newLoginServer(t)

	wantErr := iics.NewAuthError("boom")

	err := WithClient(context.Background(), &iics.Config{
		LoginURL: server.URL,
		Username: "tester@example.com",
		Password: "secret",
	}, func(cli iics.Client) error {
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, *logouts)
}
