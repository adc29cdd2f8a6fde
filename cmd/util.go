package cmd

import (
	"context"
	"fmt"

	"github.com/darmiel/zenkey/internal/authcode"
	"github.com/darmiel/zenkey/internal/config"
	"github.com/darmiel/zenkey/internal/core"
	"github.com/darmiel/zenkey/pkg/client"
)

// resolveCarrier resolves the configuration for --mcc-mnc and fails if the
// discovery service does not know the carrier.
func resolveCarrier(ctx context.Context, cli *client.Client) (*core.OpenIDConfiguration, error) {
	result, err := cli.ResolveConfiguration(ctx, f.mccMncHint(), f.Prompt)
	if err != nil {
		return nil, logError(err, "", "discovery failed")
	}
	if result.IsNotFound() {
		redirect := "none"
		if result.NotFound.DiscoverUIEndpoint != nil {
			redirect = *result.NotFound.DiscoverUIEndpoint
		}
		return nil, fmt.Errorf("carrier not found (%s), send the user to: %s", result.NotFound.Error, redirect)
	}
	return result.Configuration, nil
}

func authCodeClient(ctx context.Context, cfg *config.Config, carrier *core.OpenIDConfiguration) (*authcode.Client, error) {
	return authcode.New(ctx, *carrier, authcode.Options{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       cfg.Scopes,
		HTTPClient:   f.HTTPClient(cfg),
	})
}
