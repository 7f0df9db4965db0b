package app

import (
	"context"
	"strings"

	"github.com/Smarty-Pants-Inc/letta-sync/internal/apiclient"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/config"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/credentials"
)

// buildAPIClient resolves a credential and dials the production ApiClient
// for opts, following the same chain internal/credentials documents
// (helper subprocess first when one is configured, then explicit
// flag/env, self-hosted password, vault, general env var, settings file).
func buildAPIClient(ctx context.Context, opts *config.Options) (apiclient.ApiClient, error) {
	target := credentials.Target{
		BaseURL:    opts.APIURL,
		SelfHosted: opts.APIURL != "" && opts.APIURL != "https://api.letta.com",
	}

	credOpts := credentials.DefaultOptions()
	credOpts.Explicit = opts.APIKey
	credOpts.SettingsFilePath = config.SettingsPath()
	if opts.ServerPassword != "" {
		credOpts.ServerPasswordEnvVar = "LETTA_SERVER_PASSWORD"
	}
	if opts.AuthHelper != "" {
		credOpts.Helper = &credentials.HelperConfig{Command: opts.AuthHelper, Args: opts.AuthHelperArgs}
	}

	chain := credentials.NewChain(credOpts)
	token, err := chain.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}

	httpOpts := apiclient.DefaultHTTPOptions()
	httpOpts.BaseURL = strings.TrimRight(opts.APIURL, "/")
	httpOpts.APIKey = token

	return apiclient.NewHTTPClient(httpOpts)
}
