package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/iics-client/internal/constants"
	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

// loginRequest is the credential exchange body. The @type discriminator is
// required by the platform.
type loginRequest struct {
	Type     string `json:"@type"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Manager performs the login/logout exchanges and derives per-request auth
// state from the installed session.
//
// Reauthentication is single-flight: when several concurrent requests
// observe session expiry, only one login round-trip is issued and every
// waiter observes its single outcome.
type Manager struct {
	loginURL   string
	username   string
	password   string
	httpClient *retryablehttp.Client
	store      *Store
	logger     iics.Logger
	group      singleflight.Group
}

// NewManager creates a session manager. The retryable client is shared with
// the request executor so login traffic uses the same pooled transport.
func NewManager(loginURL, username, password string, httpClient *retryablehttp.Client, logger iics.Logger) *Manager {
	return &Manager{
		loginURL:   loginURL,
		username:   username,
		password:   password,
		httpClient: httpClient,
		store:      NewStore(),
		logger:     logger,
	}
}

// Login performs the credential exchange and installs the resulting session,
// replacing any prior one. On failure the prior session state is left
// untouched. Concurrent callers share a single in-flight exchange.
func (m *Manager) Login(ctx context.Context) (*iics.Session, error) {
	result, err, _ := m.group.Do("login", func() (interface{}, error) {
		return m.login(ctx)
	})
	if err != nil {
		return nil, err
	}

	session, ok := result.(*iics.Session)
	if !ok {
		return nil, iics.NewAuthError("login returned an unexpected result")
	}

	return session, nil
}

func (m *Manager) login(ctx context.Context) (*iics.Session, error) {
	url := m.loginURL + constants.LoginPath

	body, err := json.Marshal(loginRequest{
		Type:     "login",
		Username: m.username,
		Password: m.password,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding login request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating login request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if err != nil {
		return nil, fmt.Errorf("reading login response: %w", err)
	}

	err = iics.Classify(resp.StatusCode, string(respBody), url)
	if err != nil {
		return nil, err
	}

	session, err := iics.ParseEntity[iics.Session]("SessionInfo", respBody)
	if err != nil {
		return nil, err
	}

	m.store.Set(session)

	if m.logger != nil {
		m.logger.Info("Logged in", map[string]interface{}{
			"user":   session.Name,
			"org":    session.OrgID,
			"server": session.ServerURL,
		})
	}

	return session, nil
}

// Logout ends the current session. Without an installed session it is a
// no-op. Failures are logged, never returned; the session is cleared in all
// cases because logout is best-effort cleanup.
func (m *Manager) Logout(ctx context.Context) {
	session := m.store.Get()
	if session == nil {
		return
	}

	defer m.store.Clear()

	url := m.loginURL + constants.LogoutPath

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		m.logWarn("Logout failed", err)

		return
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(constants.SessionHeaderV2, session.SessionID)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logWarn("Logout failed", err)

		return
	}

	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	err = iics.Classify(resp.StatusCode, string(body), url)
	if err != nil {
		m.logWarn("Logout failed", err)

		return
	}

	if m.logger != nil {
		m.logger.Info("Logged out", nil)
	}
}

// Current returns the installed session, or an auth error when none is.
func (m *Manager) Current() (*iics.Session, error) {
	session := m.store.Get()
	if session == nil {
		return nil, iics.NewAuthError("not authenticated: call Login first")
	}

	return session, nil
}

// IsAuthenticated reports whether a session is installed.
func (m *Manager) IsAuthenticated() bool {
	return m.store.Get() != nil
}

// BaseURL returns the live session's base URL (serverUrl with any trailing
// slash stripped).
func (m *Manager) BaseURL() (string, error) {
	session, err := m.Current()
	if err != nil {
		return "", err
	}

	return session.BaseURL(), nil
}

// AuthHeader returns the version-specific session header name and its value
// for the live session.
func (m *Manager) AuthHeader(version iics.APIVersion) (string, string, error) {
	session, err := m.Current()
	if err != nil {
		return "", "", err
	}

	return version.SessionHeader(), session.SessionID, nil
}

func (m *Manager) logWarn(msg string, err error) {
	if m.logger != nil {
		m.logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}
