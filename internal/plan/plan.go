// Package plan wraps diff engine output into a single ReconcilePlan with
// create/update/delete/skip buckets and summary counts (spec.md §4.4).
package plan

import (
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/google/uuid"
)

// Options configures plan construction.
type Options struct {
	// AllowDelete gates whether orphaned remotes become delete actions
	// rather than skips (spec.md §4.4).
	AllowDelete bool
}

// Build walks every diff result's actions into a single ReconcilePlan.
// Orphan actions are re-evaluated against opts.AllowDelete here rather than
// in the diff engine, since "opt in with --allow-delete" is a plan-time
// decision shared across kinds.
func Build(results []*v1.DiffResult, opts Options) *v1.ReconcilePlan {
	p := &v1.ReconcilePlan{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	for _, r := range results {
		for _, action := range r.Actions {
			switch action.Type {
			case v1.ActionCreate:
				p.Creates = append(p.Creates, action)
			case v1.ActionUpdate, v1.ActionAdopt:
				p.Updates = append(p.Updates, action)
			case v1.ActionDelete:
				p.Deletes = append(p.Deletes, action)
			case v1.ActionSkip:
				if isOrphanSkip(action) && opts.AllowDelete {
					action.Type = v1.ActionDelete
					action.Reason = "orphaned; deleting (--allow-delete)"
					p.Deletes = append(p.Deletes, action)
					continue
				}
				p.Skipped = append(p.Skipped, action)
			}
		}
	}

	p.Summary = v1.PlanSummary{
		ToCreate:  len(p.Creates),
		ToUpdate:  len(p.Updates),
		ToDelete:  len(p.Deletes),
		Unchanged: countUnchanged(p.Skipped),
		Total:     len(p.Creates) + len(p.Updates) + len(p.Deletes) + len(p.Skipped),
	}
	return p
}

func isOrphanSkip(a v1.PlanAction) bool {
	return a.Type == v1.ActionSkip && a.Reason == "orphaned; opt in with --allow-delete"
}

func countUnchanged(skipped []v1.PlanAction) int {
	n := 0
	for _, a := range skipped {
		if a.Reason == "in sync" {
			n++
		}
	}
	return n
}
