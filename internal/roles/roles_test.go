package roles

import (
	"testing"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/stretchr/testify/assert"
)

func TestResolveLaneDevIncludesMemoryAndCommunicationTools(t *testing.T) {
	b := Resolve(v1.RoleLaneDev, Context{Org: "acme", Project: "widgets"})
	assert.Contains(t, b.ToolNames, "core_memory_append")
	assert.Contains(t, b.ToolNames, "send_message")
	assert.Contains(t, b.BlockNames, "persona")
}

func TestResolvePullsInMCPServerTools(t *testing.T) {
	ctx := Context{AvailableMCPServerTools: map[string][]string{"github": {"search_repos", "open_pr"}}}
	b := Resolve(v1.RoleRepoCurator, ctx)
	assert.Contains(t, b.ToolNames, "search_repos")
	assert.Contains(t, b.ToolNames, "open_pr")
}

func TestResolveUnknownRoleIsEmpty(t *testing.T) {
	b := Resolve(v1.AgentRole("made-up"), Context{})
	assert.Empty(t, b.BlockNames)
	assert.Empty(t, b.ToolNames)
}

func TestResolveSupervisorHasNoMCPTools(t *testing.T) {
	ctx := Context{AvailableMCPServerTools: map[string][]string{"github": {"search_repos"}}}
	b := Resolve(v1.RoleSupervisor, ctx)
	assert.NotContains(t, b.ToolNames, "search_repos")
}
