package client

import (
	"context"
	"strings"

	"github.com/darmiel/zenkey/internal/api"
	"github.com/darmiel/zenkey/internal/buildinfo"
)

// SandboxInfo asks a sandbox carrier ("zenkey serve") at serverURL for its
// build info.
func (c *Client) SandboxInfo(ctx context.Context, serverURL string) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	correlation, err := c.get(ctx, strings.TrimSuffix(serverURL, "/")+api.AboutRoute, &info)
	if err != nil {
		return nil, correlation, err
	}
	return &info, correlation, nil
}
