package batch

import (
	"context"
	"fmt"
	"sync"
	"testing"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlanner struct {
	mu     sync.Mutex
	inFlight int
	maxInFlight int
	plans  map[string]*v1.UpgradePlan
	errs   map[string]error
}

func (p *stubPlanner) PlanFor(ctx context.Context, agentID string) (*v1.UpgradePlan, error) {
	p.mu.Lock()
	p.inFlight++
	if p.inFlight > p.maxInFlight {
		p.maxInFlight = p.inFlight
	}
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	if err, ok := p.errs[agentID]; ok {
		return nil, err
	}
	if plan, ok := p.plans[agentID]; ok {
		return plan, nil
	}
	return &v1.UpgradePlan{AgentID: agentID, HasChanges: false, IsUpToDate: true}, nil
}

type stubApplier struct {
	fail map[string]bool
}

func (a *stubApplier) ApplyFor(ctx context.Context, plan *v1.UpgradePlan) (*v1.ApplyUpgradeResult, error) {
	if a.fail[plan.AgentID] {
		return &v1.ApplyUpgradeResult{AgentID: plan.AgentID, Success: false}, nil
	}
	return &v1.ApplyUpgradeResult{
		AgentID: plan.AgentID, Success: true,
		Outcomes: []v1.UpgradeActionOutcome{{Success: true}},
	}, nil
}

func alwaysProceed(plan *v1.UpgradePlan, force bool) string { return "" }

func TestBatchAccountingInvariant(t *testing.T) {
	planner := &stubPlanner{
		maxInFlight: 0,
		plans: map[string]*v1.UpgradePlan{
			"a1": {AgentID: "a1", HasChanges: true, Summary: v1.UpgradeSummary{SafeChanges: 1}},
			"a2": {AgentID: "a2", HasChanges: true, Summary: v1.UpgradeSummary{SafeChanges: 1}},
		},
		errs: map[string]error{"a3": fmt.Errorf("boom")},
	}
	applier := &stubApplier{fail: map[string]bool{}}
	exec := NewExecutor(planner, applier, alwaysProceed)

	agents := []string{"a1", "a2", "a3", "a4"}
	result := exec.Run(context.Background(), agents, Options{Concurrency: 2})

	require.Len(t, result.Results, 4)
	stats := result.Stats
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, stats.Succeeded+stats.Failed+stats.Skipped+stats.UpToDate, stats.Total)
	assert.Equal(t, 2, stats.Succeeded) // a1, a2
	assert.Equal(t, 1, stats.Failed)    // a3 (plan error)
	assert.Equal(t, 1, stats.UpToDate)  // a4
}

func TestBatchBoundedConcurrency(t *testing.T) {
	planner := &stubPlanner{}
	applier := &stubApplier{fail: map[string]bool{}}
	exec := NewExecutor(planner, applier, alwaysProceed)

	agents := []string{"a1", "a2", "a3", "a4", "a5"}
	exec.Run(context.Background(), agents, Options{Concurrency: 2})

	assert.LessOrEqual(t, planner.maxInFlight, 2)
}

func TestBatchStopsOnFailureWhenNotContinuing(t *testing.T) {
	planner := &stubPlanner{
		plans: map[string]*v1.UpgradePlan{
			"a1": {AgentID: "a1", HasChanges: true},
			"a2": {AgentID: "a2", HasChanges: true},
			"a3": {AgentID: "a3", HasChanges: true},
		},
	}
	applier := &stubApplier{fail: map[string]bool{"a1": true}}
	exec := NewExecutor(planner, applier, alwaysProceed)

	result := exec.Run(context.Background(), []string{"a1", "a2", "a3"}, Options{Concurrency: 1, StopOnFailure: true})
	require.Len(t, result.Results, 1)
	assert.Equal(t, v1.BatchStatusFailed, result.Results[0].Status)
}

func TestBatchSkipsWhenPreconditionRefused(t *testing.T) {
	planner := &stubPlanner{
		plans: map[string]*v1.UpgradePlan{
			"a1": {AgentID: "a1", HasChanges: true, HasBreakingChanges: true},
		},
	}
	applier := &stubApplier{fail: map[string]bool{}}
	refuse := func(plan *v1.UpgradePlan, force bool) string {
		if plan.HasBreakingChanges && !force {
			return "breaking change requires --force"
		}
		return ""
	}
	exec := NewExecutor(planner, applier, refuse)
	result := exec.Run(context.Background(), []string{"a1"}, Options{Concurrency: 1})
	require.Len(t, result.Results, 1)
	assert.Equal(t, v1.BatchStatusSkipped, result.Results[0].Status)
	assert.Equal(t, "breaking change requires --force", result.Results[0].Reason)
}
