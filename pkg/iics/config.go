package iics

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Static errors for err113 compliance.
var (
	ErrLoginURLRequired    = errors.New("login URL is required")
	ErrCredentialsRequired = errors.New("username and password are required")
	ErrConfigRequired      = errors.New("config is required")
)

// LoadConfig reads client configuration from an optional YAML file and from
// IICS_* environment variables. Environment variables override file values
// (IICS_LOGIN_URL, IICS_USERNAME, IICS_PASSWORD, ...). path may be empty to
// read from the environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("IICS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys must be bound for AutomaticEnv to surface them in Unmarshal.
	for _, key := range []string{
		"login_url", "username", "password",
		"http_timeout", "retry_max", "retry_wait_min", "retry_wait_max",
		"max_reauth_attempts", "disable_http2",
		"max_connections", "max_idle_connections",
		"debug", "user_agent",
	} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)

		err := v.ReadInConfig()
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config

	err := v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &config, nil
}

// ValidateConfig checks the fields without which no client can be built.
func ValidateConfig(config *Config) error {
	if config == nil {
		return ErrConfigRequired
	}

	if config.LoginURL == "" {
		return ErrLoginURLRequired
	}

	if config.Username == "" || config.Password == "" {
		return ErrCredentialsRequired
	}

	return nil
}

// WriteExampleConfig writes a commented starting-point config file.
func WriteExampleConfig(path string) error {
	example := Config{
		LoginURL: "us",
		Username: "user@example.com",
		Password: "changeme",
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("marshaling example config: %w", err)
	}

	header := []byte("# IICS client configuration. Values may be overridden by IICS_* environment variables.\n")

	err = os.WriteFile(path, append(header, data...), 0600)
	if err != nil {
		return fmt.Errorf("writing example config: %w", err)
	}

	return nil
}
