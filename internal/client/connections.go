package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	internalhttp "github.com/fivetwenty-io/iics-client/internal/http"
	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

// ConnectionsClient implements iics.ConnectionsClient.
type ConnectionsClient struct {
	httpClient *internalhttp.Client
}

// NewConnectionsClient creates a new connections client.
func NewConnectionsClient(httpClient *internalhttp.Client) *ConnectionsClient {
	return &ConnectionsClient{httpClient: httpClient}
}

// List returns all connections in the organization.
func (c *ConnectionsClient) List(ctx context.Context) ([]iics.Connection, error) {
	resp, err := c.httpClient.Get(ctx, iics.APIVersionV2, "/connection", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	payload, err := unwrapList(resp.Body, "connections")
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	connections, err := iics.ParseList[iics.Connection]("Connection", payload)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}

	return connections, nil
}

// Get returns a single connection by ID.
func (c *ConnectionsClient) Get(ctx context.Context, id string) (*iics.Connection, error) {
	path := "/connection/" + url.PathEscape(id)

	resp, err := c.httpClient.Get(ctx, iics.APIVersionV2, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection %s: %w", id, err)
	}

	connection, err := iics.ParseEntity[iics.Connection]("Connection", resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection %s: %w", id, err)
	}

	return connection, nil
}

// Delete removes a connection by ID.
func (c *ConnectionsClient) Delete(ctx context.Context, id string) error {
	path := "/connection/" + url.PathEscape(id)

	if _, err := c.httpClient.Delete(ctx, iics.APIVersionV2, path); err != nil {
		return fmt.Errorf("failed to delete connection %s: %w", id, err)
	}

	return nil
}

// unwrapList tolerates both response shapes the API serves for list
// endpoints: a bare JSON array, or an object wrapping the array under the
// given key.
func unwrapList(body []byte, key string) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return body, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, iics.NewValidationError("list envelope", body, err)
	}

	inner, ok := envelope[key]
	if !ok {
		return nil, iics.NewValidationError("list envelope", body,
			fmt.Errorf("%w: %s", iics.ErrExpectedArray, key))
	}

	return inner, nil
}
