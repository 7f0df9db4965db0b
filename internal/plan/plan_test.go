package plan

import (
	"testing"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBucketsActionsAndSumsMatch(t *testing.T) {
	results := []*v1.DiffResult{
		{Kind: v1.KindBlock, Actions: []v1.PlanAction{
			{Type: v1.ActionCreate, ResourceName: "a"},
			{Type: v1.ActionUpdate, ResourceName: "b"},
			{Type: v1.ActionAdopt, ResourceName: "c"},
			{Type: v1.ActionSkip, ResourceName: "d", Reason: "in sync"},
			{Type: v1.ActionSkip, ResourceName: "e", Reason: "orphaned; opt in with --allow-delete"},
		}},
	}

	p := Build(results, Options{AllowDelete: false})
	require.Len(t, p.Creates, 1)
	require.Len(t, p.Updates, 2)
	require.Len(t, p.Deletes, 0)
	require.Len(t, p.Skipped, 2)
	assert.Equal(t, p.Summary.Total, len(p.Creates)+len(p.Updates)+len(p.Deletes)+len(p.Skipped))
}

func TestBuildAllowDeletePromotesOrphanSkips(t *testing.T) {
	results := []*v1.DiffResult{
		{Kind: v1.KindBlock, Actions: []v1.PlanAction{
			{Type: v1.ActionSkip, ResourceName: "orphan", Reason: "orphaned; opt in with --allow-delete"},
		}},
	}

	p := Build(results, Options{AllowDelete: true})
	require.Len(t, p.Deletes, 1)
	assert.Empty(t, p.Skipped)
}
