package client

import (
	"context"
	"fmt"

	internalhttp "github.com/fivetwenty-io/iics-client/internal/http"
	"github.com/fivetwenty-io/iics-client/pkg/iics"
)

// RuntimeEnvironmentsClient implements iics.RuntimeEnvironmentsClient.
type RuntimeEnvironmentsClient struct {
	httpClient *internalhttp.Client
}

// NewRuntimeEnvironmentsClient creates a new runtime environments client.
func NewRuntimeEnvironmentsClient(httpClient *internalhttp.Client) *RuntimeEnvironmentsClient {
	return &RuntimeEnvironmentsClient{httpClient: httpClient}
}

// List returns all runtime environments in the organization.
func (c *RuntimeEnvironmentsClient) List(ctx context.Context) ([]iics.RuntimeEnvironment, error) {
	resp, err := c.httpClient.Get(ctx, iics.APIVersionV2, "/runtimeEnvironment", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list runtime environments: %w", err)
	}

	environments, err := iics.ParseList[iics.RuntimeEnvironment]("RuntimeEnvironment", resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to list runtime environments: %w", err)
	}

	return environments, nil
}
