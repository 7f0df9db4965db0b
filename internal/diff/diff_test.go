package diff

import (
	"testing"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, v1.Managed, Classify(true, true))
	assert.Equal(t, v1.Orphaned, Classify(true, false))
	assert.Equal(t, v1.Adopted, Classify(false, true))
	assert.Equal(t, v1.Unmanaged, Classify(false, false))
}

func TestDiffBlocksCreatesMissingAndUpdatesDrifted(t *testing.T) {
	desired := []*v1.Resource{
		{Kind: v1.KindBlock, Metadata: v1.Metadata{Name: "new-block"}, Block: &v1.BlockSpec{Label: "project", Value: "v1"}},
		{Kind: v1.KindBlock, Metadata: v1.Metadata{Name: "existing"}, Block: &v1.BlockSpec{Label: "project", Value: "v2"}},
	}
	actual := []v1.RemoteEntry{
		{
			RemoteID: "blk_1", Name: "existing", Kind: v1.KindBlock,
			Metadata: map[string]any{"managed_by": "letta-sync"},
			Fields:   map[string]any{"value": "stale"},
		},
	}

	result := DiffBlocks(desired, actual, "letta-sync", DefaultOptions())
	require.NotEmpty(t, result.Actions)

	var sawCreate, sawUpdate bool
	for _, a := range result.Actions {
		if a.Type == v1.ActionCreate && a.ResourceName == "new-block" {
			sawCreate = true
		}
		if a.Type == v1.ActionUpdate && a.ResourceName == "existing" {
			sawUpdate = true
		}
	}
	assert.True(t, sawCreate)
	assert.True(t, sawUpdate)
}

func TestDiffBlocksSkipsUnmanagedRemote(t *testing.T) {
	actual := []v1.RemoteEntry{
		{RemoteID: "blk_2", Name: "someone-elses-block", Kind: v1.KindBlock, Metadata: map[string]any{}},
	}
	result := DiffBlocks(nil, actual, "letta-sync", DefaultOptions())
	require.Len(t, result.Classified, 1)
	assert.Equal(t, v1.Unmanaged, result.Classified[0].Class)
	assert.Empty(t, result.Actions)
}

func TestDiffToolsManagedByTagMarker(t *testing.T) {
	desired := []*v1.Resource{
		{Kind: v1.KindTool, Metadata: v1.Metadata{Name: "search_docs"}, Tool: &v1.ToolSpec{SourceCode: "def f(): pass"}},
	}
	actual := []v1.RemoteEntry{
		{RemoteID: "tool_1", Name: "search_docs", Kind: v1.KindTool, Tags: []string{"managed-by:letta-sync"}, Fields: map[string]any{"sourceCode": "def f(): pass"}},
	}
	result := DiffTools(desired, actual, "letta-sync", DefaultOptions())
	require.Len(t, result.Classified, 1)
	assert.Equal(t, v1.Managed, result.Classified[0].Class)
}

func TestClassifyCredentialStatus(t *testing.T) {
	assert.Equal(t, v1.CredentialConfigured, classifyCredentialStatus(&v1.MCPServerSpec{TokenRef: &v1.CredentialRef{SecretRef: "s"}}))
	assert.Equal(t, v1.CredentialNone, classifyCredentialStatus(&v1.MCPServerSpec{Protocol: v1.MCPProtocolStdio}))
	assert.Equal(t, v1.CredentialConfigured, classifyCredentialStatus(&v1.MCPServerSpec{Env: map[string]string{"API_KEY": "x"}}))
}

func TestDiffMCPServersNeverMutates(t *testing.T) {
	desired := []*v1.Resource{
		{Kind: v1.KindMCPServer, Metadata: v1.Metadata{Name: "github"}, MCPServer: &v1.MCPServerSpec{Protocol: v1.MCPProtocolSSE, ServerURL: "https://example.com"}},
	}
	result := DiffMCPServers(desired, nil, "letta-sync", DefaultOptions())
	assert.Empty(t, result.Actions)
	require.Len(t, result.Classified, 1)
	assert.Equal(t, v1.Unmanaged, result.Classified[0].Class)
}
