package merge

import (
	"testing"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockResource(layer v1.Layer, name, value string, tags ...string) *v1.Resource {
	return &v1.Resource{
		APIVersion: v1.APIVersion,
		Kind:       v1.KindBlock,
		Metadata:   v1.Metadata{Name: name},
		Block: &v1.BlockSpec{
			Layer: layer,
			Label: "project",
			Value: value,
			Tags:  tags,
		},
	}
}

func TestMergePackagesPrecedenceProjectWinsOverOrg(t *testing.T) {
	base := &v1.Package{Layer: v1.LayerBase, Resources: []*v1.Resource{
		blockResource(v1.LayerBase, "overview", "base value", "role:agent"),
	}}
	org := &v1.Package{Layer: v1.LayerOrg, Resources: []*v1.Resource{
		blockResource(v1.LayerOrg, "overview", "org value", "org:acme"),
	}}
	project := &v1.Package{Layer: v1.LayerProject, Resources: []*v1.Resource{
		blockResource(v1.LayerProject, "overview", "project value"),
	}}

	result, err := MergePackages(&v1.LayeredPackages{Base: base, Org: org, Project: project}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, result.DesiredState.Blocks, 1)

	merged := result.DesiredState.Blocks[0]
	assert.Equal(t, "project value", merged.Block.Value)
	assert.Contains(t, merged.Block.Tags, "role:agent")
	assert.Contains(t, merged.Block.Tags, "org:acme")
	assert.Contains(t, merged.Block.Tags, "_layer:project")
}

func TestMergePackagesAppendRemovalPrefix(t *testing.T) {
	base := &v1.Package{Resources: []*v1.Resource{
		blockResource(v1.LayerBase, "overview", "v", "role:agent", "role:lane-dev"),
	}}
	org := &v1.Package{Resources: []*v1.Resource{
		blockResource(v1.LayerOrg, "overview", "v", "!role:lane-dev"),
	}}

	result, err := MergePackages(&v1.LayeredPackages{Base: base, Org: org}, Options{AddLayerTags: false})
	require.NoError(t, err)
	tags := result.DesiredState.Blocks[0].Block.Tags
	assert.Contains(t, tags, "role:agent")
	assert.NotContains(t, tags, "role:lane-dev")
}

func TestMergePackagesDeleteWithNoLowerLayerWarns(t *testing.T) {
	org := &v1.Package{Resources: []*v1.Resource{
		{
			APIVersion: v1.APIVersion,
			Kind:       v1.KindBlock,
			Metadata:   v1.Metadata{Name: "ghost"},
			Delete:     true,
			Block:      &v1.BlockSpec{Layer: v1.LayerOrg, Label: "project", Value: "x"},
		},
	}}

	result, err := MergePackages(&v1.LayeredPackages{Org: org}, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, result.DesiredState.Blocks)
	require.Len(t, result.Warnings, 1)
}

func TestMergePackagesConstraintViolationIsFatal(t *testing.T) {
	org := &v1.Package{Resources: []*v1.Resource{
		{
			APIVersion: v1.APIVersion,
			Kind:       v1.KindTool,
			Metadata:   v1.Metadata{Name: "search_docs"},
			Tool: &v1.ToolSpec{
				Layer:      v1.LayerOrg,
				SourceType: v1.SourcePython,
				SourceCode: "def f(): pass",
				JSONSchema: v1.JSONSchema{Type: "function", Function: v1.JSONSchemaFunction{Name: "wrong_name"}},
			},
		},
	}}

	_, err := MergePackages(&v1.LayeredPackages{Org: org}, DefaultOptions())
	assert.Error(t, err)
}

func TestAppendMergeDedupesAndRemoves(t *testing.T) {
	got := AppendMerge([]string{"a", "b"}, []string{"b", "c", "!a"})
	assert.ElementsMatch(t, []string{"b", "c"}, got)
}
