package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRejectsZeroConcurrency(t *testing.T) {
	o := NewOptions()
	o.Concurrency = 0
	errs := o.Validate()
	require.Len(t, errs, 1)
}

func TestValidatePassesWithDefaults(t *testing.T) {
	o := NewOptions()
	assert.Empty(t, o.Validate())
}

func TestCompleteReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("LETTA_API_KEY", "sk-test-123")
	t.Setenv("LETTA_AUTH_HELPER_ARGS", "--flag1 --flag2")

	o := NewOptions()
	require.NoError(t, o.Complete())
	assert.Equal(t, "sk-test-123", o.APIKey)
	assert.Equal(t, []string{"--flag1", "--flag2"}, o.AuthHelperArgs)
}

func TestCompleteDoesNotOverrideExplicitFlag(t *testing.T) {
	t.Setenv("LETTA_API_KEY", "sk-env")
	o := NewOptions()
	o.APIKey = "sk-flag"
	require.NoError(t, o.Complete())
	assert.Equal(t, "sk-flag", o.APIKey)
}

func TestSettingsPathRespectsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdgtest")
	assert.Equal(t, "/tmp/xdgtest/letta/settings.json", SettingsPath())
}

func TestSettingsPathFallsBackToHomeDir(t *testing.T) {
	os.Unsetenv("XDG_CONFIG_HOME")
	path := SettingsPath()
	assert.Contains(t, path, ".config/letta/settings.json")
}
