package client

import (
	"context"
	"fmt"

	internalhttp "github.com/fivetwenty-io/iics-client/internal/http"
	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

// AgentsClient implements iics.AgentsClient.
type AgentsClient struct {
	httpClient *internalhttp.Client
}

// NewAgentsClient creates a new Secure Agents client.
func NewAgentsClient(httpClient *internalhttp.Client) *AgentsClient {
	return &AgentsClient{httpClient: httpClient}
}

// List returns all Secure Agents registered in the organization.
func (c *AgentsClient) List(ctx context.Context) ([]iics.Agent, error) {
	resp, err := c.httpClient.Get(ctx, iics.APIVersionV2, "/agent", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	agents, err := iics.ParseList[iics.Agent]("Agent", resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}

	return agents, nil
}
