package client

import (
	"context"
	"fmt"

	"github.com/youssefmrini/embed-dashboard-AIBI/internal/api"
	"github.com/youssefmrini/embed-dashboard-AIBI/internal/buildinfo"
)

// EmbedConfig asks the broker to run a fresh token exchange and returns the
// embed payload plus the response's correlation ID.
func (c *Client) EmbedConfig(ctx context.Context) (*api.EmbedConfig, string, error) {
	var result api.EmbedConfig
	correlation, err := c.get(ctx, api.EmbedConfigRoute, &result)
	if err != nil {
		return nil, correlation, fmt.Errorf("fetching embed config: %w", err)
	}
	return &result, correlation, nil
}

// About returns the broker's build information.
func (c *Client) About(ctx context.Context) (*buildinfo.Info, string, error) {
	var result buildinfo.Info
	correlation, err := c.get(ctx, api.AboutRoute, &result)
	if err != nil {
		return nil, correlation, fmt.Errorf("fetching build info: %w", err)
	}
	return &result, correlation, nil
}
