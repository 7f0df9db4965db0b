// Package credentials resolves operator credentials for the remote API
// client (spec.md §6.4): an ordered chain of providers, selected by
// target endpoint, replacing the teacher's two separate Cloud/self-hosted
// code paths (spec.md §9 re-architecture note) with one
// CredentialProvider interface.
package credentials

import (
	"context"
	"fmt"
	"os"
)

// Target describes the endpoint credentials are being resolved for.
type Target struct {
	// BaseURL is the remote API's base URL.
	BaseURL string
	// SelfHosted is true when BaseURL points at a self-hosted deployment
	// rather than the managed cloud service (spec.md §6.4 step 2 only
	// applies to self-hosted targets).
	SelfHosted bool
}

// Provider is one link in the resolution chain.
type Provider interface {
	// Name identifies the provider for CredentialMissing's "tried" list.
	Name() string
	// Resolve returns a token and true if this provider can supply one
	// for target, or "", false if it has no opinion (try the next
	// provider). An error aborts the whole chain (e.g. a vault that
	// exists but fails to decrypt).
	Resolve(ctx context.Context, target Target) (string, bool, error)
}

// Options configures the default provider chain (spec.md §6.4, §6.6).
type Options struct {
	// Explicit is used verbatim if non-empty (resolution step 1).
	Explicit string

	// APIKeyEnvVar is the general env var checked in step 4 (spec.md
	// §6.6's <ENV_API_KEY>). Defaults to "LETTA_API_KEY".
	APIKeyEnvVar string
	// ServerPasswordEnvVar is the self-hosted-only env var checked in
	// step 2 (<ENV_SERVER_PASSWORD>). Defaults to "LETTA_SERVER_PASSWORD".
	ServerPasswordEnvVar string

	// Vault, if non-nil, is consulted in step 3.
	Vault Vault

	// SettingsFilePath is the step-5 user settings file. Defaults to
	// "$XDG_CONFIG_HOME/letta-sync/credentials" (or
	// "~/.config/letta-sync/credentials").
	SettingsFilePath string

	// Helper, if non-nil, is tried in addition to the chain above: spec.md
	// §6.4 describes the credential-helper subprocess as "also supported,"
	// so when configured it is inserted as the highest-priority provider,
	// and the rest of the chain still runs when it yields nothing.
	Helper *HelperConfig

	// PreferEnvKey inverts steps 2-3 relative to the general env var,
	// resolving the open question about the env flag that "inverts the
	// credential-vault priority" (spec.md §9) by making the inversion an
	// explicit, documented option rather than silent implicit behavior.
	PreferEnvKey bool
}

// DefaultOptions fills in the spec.md §6.6 default env var names.
func DefaultOptions() Options {
	return Options{
		APIKeyEnvVar:         "LETTA_API_KEY",
		ServerPasswordEnvVar: "LETTA_SERVER_PASSWORD",
	}
}

// Chain resolves credentials by trying each provider in order and
// returning the first successful result (spec.md §6.4).
type Chain struct {
	providers []Provider
}

// NewChain builds the standard resolution chain from Options.
func NewChain(opts Options) *Chain {
	var providers []Provider

	if opts.Helper != nil {
		providers = append(providers, &helperProvider{cfg: *opts.Helper})
	}

	explicit := &explicitProvider{value: opts.Explicit}
	serverPassword := &envProvider{name: "self-hosted password", envVar: opts.ServerPasswordEnvVar, selfHostedOnly: true}
	vault := &vaultProvider{vault: opts.Vault}
	generalEnv := &envProvider{name: "general api key env var", envVar: opts.APIKeyEnvVar}
	settings := &settingsFileProvider{path: opts.SettingsFilePath}

	if opts.PreferEnvKey {
		providers = append(providers, explicit, generalEnv, serverPassword, vault, settings)
	} else {
		providers = append(providers, explicit, serverPassword, vault, generalEnv, settings)
	}

	return &Chain{providers: providers}
}

// Resolve walks the chain, returning the first successful credential or a
// CredentialMissing-style error listing every provider tried.
func (c *Chain) Resolve(ctx context.Context, target Target) (string, error) {
	var tried []string
	for _, p := range c.providers {
		tried = append(tried, p.Name())
		token, ok, err := p.Resolve(ctx, target)
		if err != nil {
			return "", fmt.Errorf("credential provider %q: %w", p.Name(), err)
		}
		if ok {
			return token, nil
		}
	}
	return "", &MissingError{Target: target.BaseURL, Tried: tried}
}

// MissingError mirrors errorsx.CredentialMissing; kept local to avoid a
// credentials -> errorsx -> credentials import loop risk as the chain
// grows (errorsx never imports this package).
type MissingError struct {
	Target string
	Tried  []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no credential available for %q (tried: %v)", e.Target, e.Tried)
}

type explicitProvider struct {
	value string
}

func (p *explicitProvider) Name() string { return "explicit config" }

func (p *explicitProvider) Resolve(ctx context.Context, target Target) (string, bool, error) {
	if p.value == "" {
		return "", false, nil
	}
	return p.value, true, nil
}

type envProvider struct {
	name           string
	envVar         string
	selfHostedOnly bool
}

func (p *envProvider) Name() string { return p.name }

func (p *envProvider) Resolve(ctx context.Context, target Target) (string, bool, error) {
	if p.selfHostedOnly && !target.SelfHosted {
		return "", false, nil
	}
	if p.envVar == "" {
		return "", false, nil
	}
	v := os.Getenv(p.envVar)
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

type vaultProvider struct {
	vault Vault
}

func (p *vaultProvider) Name() string { return "encrypted secrets vault" }

func (p *vaultProvider) Resolve(ctx context.Context, target Target) (string, bool, error) {
	if p.vault == nil {
		return "", false, nil
	}
	token, ok, err := p.vault.Decrypt(ctx, target.BaseURL)
	if err != nil {
		return "", false, fmt.Errorf("decrypt vault entry: %w", err)
	}
	return token, ok, nil
}

type settingsFileProvider struct {
	path string
}

func (p *settingsFileProvider) Name() string { return "user settings file" }

func (p *settingsFileProvider) Resolve(ctx context.Context, target Target) (string, bool, error) {
	path := p.path
	if path == "" {
		path = defaultSettingsPath()
	}
	if path == "" {
		return "", false, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read settings file %q: %w", path, err)
	}
	token := parseSettingsToken(raw, target.BaseURL)
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

func defaultSettingsPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = home + "/.config"
	}
	return dir + "/letta-sync/credentials"
}
