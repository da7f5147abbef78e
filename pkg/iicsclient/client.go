package iicsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/iics-client/internal/client"
	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

// regionHosts maps the published region shortcuts to their login hosts.
var regionHosts = map[string]string{
	"us": "https://dm-us.informaticacloud.com",
	"em": "https://dm-em.informaticacloud.com",
	"ap": "https://dm-ap.informaticacloud.com",
}

// New creates a new IICS API client and logs it in. The returned client
// holds a live session; pair it with Logout and Close, or use WithClient
// for scoped cleanup.
func New(ctx context.Context, config *iics.Config) (iics.Client, error) {
	if config == nil {
		return nil, iics.ErrConfigRequired
	}

	if err := iics.ValidateConfig(config); err != nil {
		return nil, err
	}

	config.LoginURL = ResolveLoginURL(config.LoginURL)

	cli, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	if _, err := cli.Login(ctx); err != nil {
		_ = cli.Close()

		return nil, err
	}

	return cli, nil
}

// WithClient builds a client, runs fn against it, and logs out and closes
// the client on every path.
func WithClient(ctx context.Context, config *iics.Config, fn func(iics.Client) error) error {
	cli, err := New(ctx, config)
	if err != nil {
		return err
	}

	defer func() {
		cli.Logout(ctx)
		_ = cli.Close()
	}()

	return fn(cli)
}

// ResolveLoginURL expands a region shortcut to its login host and
// normalizes explicit URLs: trailing slashes are trimmed and a missing
// scheme defaults to https.
func ResolveLoginURL(loginURL string) string {
	if host, ok := regionHosts[strings.ToLower(strings.TrimSpace(loginURL))]; ok {
		return host
	}

	normalized := strings.TrimSuffix(loginURL, "/")
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	return normalized
}
