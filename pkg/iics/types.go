package iics

import (
	"fmt"
	"strings"
	"time"

	"github.com/fivetwenty-io/iics-client/internal/constants"
)

// APIVersion selects an IICS API surface. The version determines both the
// URL path prefix and the name of the header that carries the session token.
type APIVersion string

const (
	// APIVersionV2 is the legacy v2 platform API.
	APIVersionV2 APIVersion = "v2"

	// APIVersionV3 is the v3 platform API.
	APIVersionV3 APIVersion = "v3"
)

// Prefix returns the URL path prefix for calls against this version.
func (v APIVersion) Prefix() string {
	if v == APIVersionV2 {
		return constants.APIv2Prefix
	}

	return constants.APIv3Prefix
}

// SessionHeader returns the name of the request header that carries the
// session token for this version.
func (v APIVersion) SessionHeader() string {
	if v == APIVersionV2 {
		return constants.SessionHeaderV2
	}

	return constants.SessionHeaderV3
}

// Session holds the authentication context issued by a successful login.
// It is immutable once created; a new login replaces it wholesale.
type Session struct {
	UserID    string `json:"id"                yaml:"id"`
	Name      string `json:"name"              yaml:"name"`
	OrgID     string `json:"orgId"             yaml:"orgId"`
	OrgName   string `json:"orgName,omitempty" yaml:"orgName,omitempty"`
	ServerURL string `json:"serverUrl"         yaml:"serverUrl"`
	SessionID string `json:"icSessionId"       yaml:"icSessionId"`
}

// Validate checks the required login response fields.
func (s *Session) Validate() error {
	for _, field := range []struct {
		name  string
		value string
	}{
		{"id", s.UserID},
		{"name", s.Name},
		{"orgId", s.OrgID},
		{"serverUrl", s.ServerURL},
		{"icSessionId", s.SessionID},
	} {
		if field.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingRequiredField, field.name)
		}
	}

	return nil
}

// BaseURL returns the serverUrl with any trailing slash stripped. Every
// authenticated call in this session's lifetime is issued against it.
func (s *Session) BaseURL() string {
	return strings.TrimRight(s.ServerURL, "/")
}

// Connection represents a connection in IICS.
type Connection struct {
	ID          string     `json:"id"                   yaml:"id"`
	OrgID       string     `json:"orgId"                yaml:"orgId"`
	Name        string     `json:"name"                 yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	CreateTime  *time.Time `json:"createTime,omitempty"  yaml:"createTime,omitempty"`
	UpdateTime  *time.Time `json:"updateTime,omitempty"  yaml:"updateTime,omitempty"`
	CreatedBy   string     `json:"createdBy,omitempty"   yaml:"createdBy,omitempty"`
	UpdatedBy   string     `json:"updatedBy,omitempty"   yaml:"updatedBy,omitempty"`
}

// Validate checks the required connection fields.
func (c *Connection) Validate() error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: id", ErrMissingRequiredField)
	case c.OrgID == "":
		return fmt.Errorf("%w: orgId", ErrMissingRequiredField)
	case c.Name == "":
		return fmt.Errorf("%w: name", ErrMissingRequiredField)
	}

	return nil
}

// Agent represents a Secure Agent registered with the org.
type Agent struct {
	ID          string `json:"id"                    yaml:"id"`
	OrgID       string `json:"orgId"                 yaml:"orgId"`
	Name        string `json:"name"                  yaml:"name"`
	Host        string `json:"host,omitempty"        yaml:"host,omitempty"`
	Active      bool   `json:"active,omitempty"      yaml:"active,omitempty"`
	ReadyToRun  bool   `json:"readyToRun,omitempty"  yaml:"readyToRun,omitempty"`
	Platform    string `json:"platform,omitempty"    yaml:"platform,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate checks the required agent fields.
func (a *Agent) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingRequiredField)
	}

	if a.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingRequiredField)
	}

	return nil
}

// RuntimeEnvironment represents a runtime environment (an agent group).
type RuntimeEnvironment struct {
	ID          string  `json:"id"                    yaml:"id"`
	OrgID       string  `json:"orgId"                 yaml:"orgId"`
	Name        string  `json:"name"                  yaml:"name"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	IsShared    bool    `json:"isShared,omitempty"    yaml:"isShared,omitempty"`
	Agents      []Agent `json:"agents,omitempty"      yaml:"agents,omitempty"`
}

// Validate checks the required runtime environment fields.
func (r *RuntimeEnvironment) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: id", ErrMissingRequiredField)
	}

	if r.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingRequiredField)
	}

	return nil
}
