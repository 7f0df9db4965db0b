package upgrade

import (
	"context"
	"testing"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/apiclient"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/roles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanAttachesMissingAndDetachesExtra(t *testing.T) {
	planner := NewPlanner()
	agent := AgentState{
		ID:             "agent-1",
		AttachedBlocks: map[string]string{"stale": "blk-stale"},
	}
	bundle := roles.Bundle{BlockNames: []string{"persona"}}
	lookup := DesiredLookup{BlockIDs: map[string]string{"persona": "blk-persona"}}

	plan := planner.Plan(agent, bundle, lookup, nil)
	require.Len(t, plan.Actions, 2)
	assert.True(t, plan.HasChanges)
	assert.True(t, plan.HasBreakingChanges) // detach present

	var sawAttach, sawDetach bool
	for _, a := range plan.Actions {
		if a.Type == v1.UpgradeAttachBlock {
			sawAttach = true
			assert.Equal(t, v1.ClassificationSafe, a.Classification)
		}
		if a.Type == v1.UpgradeDetachBlock {
			sawDetach = true
			assert.Equal(t, v1.ClassificationBreaking, a.Classification)
		}
	}
	assert.True(t, sawAttach)
	assert.True(t, sawDetach)
}

func TestPlanUpToDateWhenAttachmentsMatch(t *testing.T) {
	planner := NewPlanner()
	agent := AgentState{ID: "agent-1", AttachedBlocks: map[string]string{"persona": "blk-1"}}
	bundle := roles.Bundle{BlockNames: []string{"persona"}}
	plan := planner.Plan(agent, bundle, DesiredLookup{}, nil)
	assert.False(t, plan.HasChanges)
	assert.True(t, plan.IsUpToDate)
}

func TestPinnedChannelForcesBreaking(t *testing.T) {
	planner := NewPlanner()
	agent := AgentState{ID: "agent-1", Channel: v1.ChannelPinned, AttachedBlocks: map[string]string{"persona": "blk-1"}}
	bundle := roles.Bundle{BlockNames: []string{"persona"}}
	plan := planner.Plan(agent, bundle, DesiredLookup{}, nil)
	assert.True(t, plan.HasBreakingChanges)
}

func TestApplyRefusesBreakingWithoutForce(t *testing.T) {
	fake := apiclient.NewFakeClient()
	fake.Seed("agents", apiclient.Entity{ID: "agent-1", Name: "agent-1", Tags: []string{}})
	applier := NewApplier(fake)

	plan := &v1.UpgradePlan{
		AgentID:         "agent-1",
		HasBreakingChanges: true,
		Actions: []v1.UpgradeAction{
			{Type: v1.UpgradeDetachBlock, ResourceKind: v1.UpgradeKindBlock, ResourceName: "stale", ResourceID: "blk-1", Classification: v1.ClassificationBreaking},
		},
	}

	result := applier.Apply(context.Background(), plan, ApplyOptions{ReconcilerID: "letta-sync"})
	assert.False(t, result.Success)
	require.Len(t, result.SkippedActions, 1)
	assert.Equal(t, "breaking change requires --force", result.SkippedActions[0].SkipReason)
}

func TestApplyAppliesSafeActionsAlongsideRefusedBreaking(t *testing.T) {
	fake := apiclient.NewFakeClient()
	fake.Seed("agents", apiclient.Entity{ID: "agent-1", Name: "agent-1", Tags: []string{}})
	applier := NewApplier(fake)

	plan := &v1.UpgradePlan{
		AgentID:            "agent-1",
		HasBreakingChanges: true,
		Actions: []v1.UpgradeAction{
			{Type: v1.UpgradeAttachBlock, ResourceKind: v1.UpgradeKindBlock, ResourceName: "persona", ResourceID: "blk-1", Classification: v1.ClassificationSafe},
			{Type: v1.UpgradeDetachBlock, ResourceKind: v1.UpgradeKindBlock, ResourceName: "stale", ResourceID: "blk-2", Classification: v1.ClassificationBreaking},
		},
	}

	result := applier.Apply(context.Background(), plan, ApplyOptions{ReconcilerID: "letta-sync"})
	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].Success)
	require.Len(t, result.SkippedActions, 1)
	assert.False(t, result.Success)
}

func TestApplyDryRunMakesNoChanges(t *testing.T) {
	fake := apiclient.NewFakeClient()
	fake.Seed("agents", apiclient.Entity{ID: "agent-1", Name: "agent-1", Tags: []string{}})
	applier := NewApplier(fake)

	plan := &v1.UpgradePlan{
		AgentID: "agent-1",
		Actions: []v1.UpgradeAction{
			{Type: v1.UpgradeAttachBlock, ResourceKind: v1.UpgradeKindBlock, ResourceName: "persona", ResourceID: "blk-1", Classification: v1.ClassificationSafe},
		},
	}
	result := applier.Apply(context.Background(), plan, ApplyOptions{ReconcilerID: "letta-sync", DryRun: true})
	assert.True(t, result.DryRun)
	assert.True(t, result.Success)
}

func TestAgentLifecycleTransitions(t *testing.T) {
	l := NewAgentLifecycle(StateUnmanaged)
	ctx := context.Background()

	state, err := l.Advance(ctx, true, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, StateManagedInSync, state)

	state, err = l.Advance(ctx, false, true, false, false)
	require.NoError(t, err)
	assert.Equal(t, StateManagedDrifted, state)

	state, err = l.Advance(ctx, true, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, StateManagedInSync, state)

	state, err = l.Advance(ctx, false, false, true, false)
	require.NoError(t, err)
	assert.Equal(t, StateManagedPinned, state)

	// Non-force apply while pinned is a no-op, not an error.
	state, err = l.Advance(ctx, true, false, true, false)
	require.NoError(t, err)
	assert.Equal(t, StateManagedPinned, state)

	state, err = l.Advance(ctx, false, false, false, true)
	require.NoError(t, err)
	assert.Equal(t, StateManagedInSync, state)
}
