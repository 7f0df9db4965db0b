// Package batch executes an upgrade plan/apply pipeline across many
// agents with bounded, chunked concurrency (spec.md §4.10).
package batch

import (
	"context"
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"golang.org/x/sync/errgroup"
)

// AgentPlanner computes an UpgradePlan for one agent; implemented by
// internal/upgrade.Planner in production, stubbed in tests.
type AgentPlanner interface {
	PlanFor(ctx context.Context, agentID string) (*v1.UpgradePlan, error)
}

// AgentApplier applies an UpgradePlan for one agent; implemented by
// internal/upgrade.Applier in production.
type AgentApplier interface {
	ApplyFor(ctx context.Context, plan *v1.UpgradePlan) (*v1.ApplyUpgradeResult, error)
}

// CanProceed mirrors internal/upgrade's precondition gate so the batch
// executor can classify a plan as skipped before ever calling Apply.
type CanProceed func(plan *v1.UpgradePlan, force bool) string

// Options configures one batch run (spec.md §4.10).
type Options struct {
	Concurrency int
	Force       bool
	DryRun      bool

	// StopOnFailure stops the batch on the first agent failure, preserving
	// already-completed results (zero value false matches spec.md §4.10's
	// continueOnFailure defaulting to true).
	StopOnFailure bool

	OnProgress      func(v1.BatchProgress)
	OnAgentComplete func(v1.BatchAgentResult)
}

// Executor runs executeBatchUpgrade (spec.md §4.10).
type Executor struct {
	planner    AgentPlanner
	applier    AgentApplier
	canProceed CanProceed
	metrics    *metrics
}

// NewExecutor builds a batch Executor.
func NewExecutor(planner AgentPlanner, applier AgentApplier, canProceed CanProceed) *Executor {
	return &Executor{planner: planner, applier: applier, canProceed: canProceed, metrics: newMetrics()}
}

// Run executes the batch over agentIDs (spec.md §4.10): sequential when
// Concurrency==1, otherwise chunked concurrent processing with at most
// Concurrency agents in flight at any instant. StopOnFailure defaults
// false; when set, no further chunk starts after the first failure, and
// every result already completed (including the rest of the failing
// chunk) is kept.
func (e *Executor) Run(ctx context.Context, agentIDs []string, opts Options) *v1.BatchUpgradeResult {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	start := time.Now()
	result := &v1.BatchUpgradeResult{}
	total := len(agentIDs)
	stopped := false

	for offset := 0; offset < total && !stopped; offset += opts.Concurrency {
		end := offset + opts.Concurrency
		if end > total {
			end = total
		}
		chunk := agentIDs[offset:end]
		chunkResults := make([]v1.BatchAgentResult, len(chunk))

		g, gctx := errgroup.WithContext(ctx)
		for i, agentID := range chunk {
			i, agentID := i, agentID
			idx := offset + i
			if opts.OnProgress != nil {
				opts.OnProgress(v1.BatchProgress{
					CurrentAgent:         agentID,
					Current:              idx + 1,
					Total:                total,
					Percentage:           percentage(idx+1, total),
					ElapsedMs:            time.Since(start).Milliseconds(),
					EstimatedRemainingMs: estimateRemaining(start, idx+1, total),
				})
			}
			g.Go(func() error {
				chunkResults[i] = e.runOne(gctx, agentID, opts)
				return nil
			})
		}
		_ = g.Wait() // runOne never returns an error; failures are recorded per-agent

		for _, r := range chunkResults {
			result.Results = append(result.Results, r)
			if opts.OnAgentComplete != nil {
				opts.OnAgentComplete(r)
			}
			if r.Status == v1.BatchStatusFailed && opts.StopOnFailure {
				stopped = true
			}
		}
	}

	result.Stats = aggregate(result.Results, time.Since(start).Milliseconds())
	e.metrics.observe(&BatchRunMetrics{
		StatusCounts: map[string]int{
			string(v1.BatchStatusApplied):  result.Stats.Succeeded,
			string(v1.BatchStatusFailed):   result.Stats.Failed,
			string(v1.BatchStatusSkipped):  result.Stats.Skipped,
			string(v1.BatchStatusUpToDate): result.Stats.UpToDate,
		},
		DurationSeconds: time.Since(start).Seconds(),
	})
	return result
}

func (e *Executor) runOne(ctx context.Context, agentID string, opts Options) v1.BatchAgentResult {
	agentStart := time.Now()
	plan, err := e.planner.PlanFor(ctx, agentID)
	if err != nil {
		return v1.BatchAgentResult{AgentID: agentID, Status: v1.BatchStatusFailed, Err: err.Error(), DurationMs: time.Since(agentStart).Milliseconds()}
	}
	if !plan.HasChanges {
		return v1.BatchAgentResult{AgentID: agentID, Status: v1.BatchStatusUpToDate, Plan: plan, DurationMs: time.Since(agentStart).Milliseconds()}
	}

	if reason := e.canProceed(plan, opts.Force); reason != "" {
		return v1.BatchAgentResult{AgentID: agentID, Status: v1.BatchStatusSkipped, Reason: reason, Plan: plan, DurationMs: time.Since(agentStart).Milliseconds()}
	}

	applyResult, err := e.applier.ApplyFor(ctx, plan)
	if err != nil {
		return v1.BatchAgentResult{AgentID: agentID, Status: v1.BatchStatusFailed, Plan: plan, Err: err.Error(), DurationMs: time.Since(agentStart).Milliseconds()}
	}
	status := v1.BatchStatusApplied
	if !applyResult.Success {
		status = v1.BatchStatusFailed
	}
	return v1.BatchAgentResult{AgentID: agentID, Status: status, Plan: plan, Apply: applyResult, DurationMs: time.Since(agentStart).Milliseconds()}
}

func percentage(current, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(current) / float64(total) * 100
}

func estimateRemaining(start time.Time, current, total int) int64 {
	if current == 0 {
		return 0
	}
	elapsed := time.Since(start)
	perAgent := elapsed / time.Duration(current)
	remaining := total - current
	return (perAgent * time.Duration(remaining)).Milliseconds()
}

func aggregate(results []v1.BatchAgentResult, totalDurationMs int64) v1.BatchStats {
	stats := v1.BatchStats{Total: len(results), TotalDurationMs: totalDurationMs}
	for _, r := range results {
		switch r.Status {
		case v1.BatchStatusApplied:
			stats.Succeeded++
		case v1.BatchStatusFailed:
			stats.Failed++
		case v1.BatchStatusSkipped:
			stats.Skipped++
		case v1.BatchStatusUpToDate:
			stats.UpToDate++
		}
		if r.Apply != nil {
			for _, o := range r.Apply.Outcomes {
				if o.Success {
					stats.TotalChangesApplied++
				}
			}
		}
		if r.Plan != nil {
			stats.TotalSafeChanges += r.Plan.Summary.SafeChanges
			stats.TotalBreakingChanges += r.Plan.Summary.BreakingChanges
		}
	}
	return stats
}
