package apply

import (
	"context"
	"testing"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyCreatesBlockAndRecordsRemoteID(t *testing.T) {
	fake := apiclient.NewFakeClient()
	desired := v1.NewDesiredState()
	desired.Append(&v1.Resource{
		Kind:     v1.KindBlock,
		Metadata: v1.Metadata{Name: "project"},
		Block:    &v1.BlockSpec{Label: "project", Value: "hello"},
	})

	plan := &v1.ReconcilePlan{
		ID: "plan-1",
		Creates: []v1.PlanAction{
			{Type: v1.ActionCreate, ResourceKind: v1.KindBlock, ResourceName: "project"},
		},
	}

	exec := NewExecutor(fake, desired)
	result := exec.Apply(context.Background(), plan, Options{ReconcilerID: "letta-sync"})

	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].Success)
	assert.NotEmpty(t, result.Outcomes[0].RemoteID)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, result.Failed)

	list, err := fake.Blocks().List(context.Background(), apiclient.ListParams{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "hello", list[0].Fields["value"])
}

func TestApplyDryRunMakesNoCalls(t *testing.T) {
	fake := apiclient.NewFakeClient()
	desired := v1.NewDesiredState()
	desired.Append(&v1.Resource{
		Kind:     v1.KindBlock,
		Metadata: v1.Metadata{Name: "project"},
		Block:    &v1.BlockSpec{Label: "project", Value: "hello"},
	})

	plan := &v1.ReconcilePlan{
		ID:      "plan-1",
		Creates: []v1.PlanAction{{Type: v1.ActionCreate, ResourceKind: v1.KindBlock, ResourceName: "project"}},
	}

	exec := NewExecutor(fake, desired)
	result := exec.Apply(context.Background(), plan, Options{ReconcilerID: "letta-sync", DryRun: true})

	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Succeeded)

	list, err := fake.Blocks().List(context.Background(), apiclient.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestApplyDeleteRemovesRemoteBlock(t *testing.T) {
	fake := apiclient.NewFakeClient()
	created, err := fake.Blocks().Create(context.Background(), map[string]any{"label": "orphan", "value": "v1"})
	require.NoError(t, err)

	desired := v1.NewDesiredState()
	plan := &v1.ReconcilePlan{
		ID:      "plan-1",
		Deletes: []v1.PlanAction{{Type: v1.ActionDelete, ResourceKind: v1.KindBlock, ResourceName: "orphan", RemoteID: created.ID}},
	}

	exec := NewExecutor(fake, desired)
	result := exec.Apply(context.Background(), plan, Options{ReconcilerID: "letta-sync"})
	require.Len(t, result.Outcomes, 1)
	assert.True(t, result.Outcomes[0].Success)

	list, err := fake.Blocks().List(context.Background(), apiclient.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestApplyMissingRemoteIDOnUpdateFails(t *testing.T) {
	fake := apiclient.NewFakeClient()
	desired := v1.NewDesiredState()
	desired.Append(&v1.Resource{
		Kind:     v1.KindBlock,
		Metadata: v1.Metadata{Name: "project"},
		Block:    &v1.BlockSpec{Label: "project", Value: "hello"},
	})
	plan := &v1.ReconcilePlan{
		ID:      "plan-1",
		Updates: []v1.PlanAction{{Type: v1.ActionUpdate, ResourceKind: v1.KindBlock, ResourceName: "project"}},
	}

	exec := NewExecutor(fake, desired)
	result := exec.Apply(context.Background(), plan, Options{ReconcilerID: "letta-sync"})
	require.Len(t, result.Outcomes, 1)
	assert.False(t, result.Outcomes[0].Success)
	assert.Equal(t, 1, result.Failed)
}
