package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVault struct {
	tokens map[string]string
}

func (v *fakeVault) Decrypt(ctx context.Context, target string) (string, bool, error) {
	tok, ok := v.tokens[target]
	return tok, ok, nil
}

func TestChainExplicitWins(t *testing.T) {
	opts := DefaultOptions()
	opts.Explicit = "explicit-token"
	c := NewChain(opts)

	token, err := c.Resolve(context.Background(), Target{BaseURL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "explicit-token", token)
}

func TestChainServerPasswordOnlyForSelfHosted(t *testing.T) {
	opts := DefaultOptions()
	opts.ServerPasswordEnvVar = "LETTASYNC_TEST_SERVER_PASSWORD"
	t.Setenv("LETTASYNC_TEST_SERVER_PASSWORD", "server-pw")
	c := NewChain(opts)

	_, err := c.Resolve(context.Background(), Target{BaseURL: "https://cloud.example.com", SelfHosted: false})
	assert.Error(t, err)

	token, err := c.Resolve(context.Background(), Target{BaseURL: "https://self.example.com", SelfHosted: true})
	require.NoError(t, err)
	assert.Equal(t, "server-pw", token)
}

func TestChainVaultBeforeGeneralEnv(t *testing.T) {
	opts := DefaultOptions()
	opts.APIKeyEnvVar = "LETTASYNC_TEST_API_KEY"
	t.Setenv("LETTASYNC_TEST_API_KEY", "env-token")
	opts.Vault = &fakeVault{tokens: map[string]string{"https://example.com": "vault-token"}}
	c := NewChain(opts)

	token, err := c.Resolve(context.Background(), Target{BaseURL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "vault-token", token)
}

func TestChainPreferEnvKeyInvertsPriority(t *testing.T) {
	opts := DefaultOptions()
	opts.APIKeyEnvVar = "LETTASYNC_TEST_API_KEY2"
	t.Setenv("LETTASYNC_TEST_API_KEY2", "env-token")
	opts.Vault = &fakeVault{tokens: map[string]string{"https://example.com": "vault-token"}}
	opts.PreferEnvKey = true
	c := NewChain(opts)

	token, err := c.Resolve(context.Background(), Target{BaseURL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)
}

func TestChainNoProviderReturnsMissingError(t *testing.T) {
	c := NewChain(Options{})
	_, err := c.Resolve(context.Background(), Target{BaseURL: "https://example.com"})
	require.Error(t, err)
	var missing *MissingError
	require.ErrorAs(t, err, &missing)
	assert.NotEmpty(t, missing.Tried)
}
