package upgrade

import (
	"context"
	"errors"
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/apiclient"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/errorsx"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/log"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/tags"
)

// ApplyOptions configures a single applyUpgradePlan run (spec.md §4.6).
type ApplyOptions struct {
	DryRun       bool
	Force        bool
	ReconcilerID string
	Logger       log.Logger
}

// Applier applies UpgradePlans against an ApiClient's AgentsClient.
type Applier struct {
	client apiclient.ApiClient
}

// NewApplier builds an Applier.
func NewApplier(client apiclient.ApiClient) *Applier {
	return &Applier{client: client}
}

// canProceedWithUpgrade is the precondition gate (spec.md §4.6). An empty
// string means "proceed."
func canProceedWithUpgrade(plan *v1.UpgradePlan, opts ApplyOptions) string {
	if plan.HasBreakingChanges && !opts.Force {
		return "breaking change requires --force"
	}
	if plan.Channel == v1.ChannelPinned && !opts.Force {
		return "pinned channel requires --force"
	}
	return ""
}

// Apply runs plan to completion (spec.md §4.6): safe actions always run;
// breaking actions run only when canProceedWithUpgrade allows it, and are
// otherwise recorded in SkippedActions without failing the whole batch.
func (a *Applier) Apply(ctx context.Context, plan *v1.UpgradePlan, opts ApplyOptions) *v1.ApplyUpgradeResult {
	result := &v1.ApplyUpgradeResult{AgentID: plan.AgentID, DryRun: opts.DryRun}

	refusal := canProceedWithUpgrade(plan, opts)
	anySkipped := refusal != ""

	for _, action := range plan.Actions {
		if refusal != "" && action.Classification == v1.ClassificationBreaking {
			result.SkippedActions = append(result.SkippedActions, v1.UpgradeActionOutcome{
				Action: action, Skipped: true, SkipReason: refusal,
			})
			continue
		}

		if opts.DryRun {
			result.Outcomes = append(result.Outcomes, v1.UpgradeActionOutcome{Action: action, Success: true})
			continue
		}

		err := a.runOne(ctx, plan.AgentID, action)
		outcome := v1.UpgradeActionOutcome{Action: action, Success: err == nil}
		if err != nil {
			failure := &errorsx.ActionFailed{
				ResourceKind: string(action.ResourceKind),
				ResourceName: action.ResourceName,
				ActionType:   string(action.Type),
				Err:          err,
			}
			outcome.Error = failure.Error()
			if opts.Logger != nil {
				opts.Logger.Error(failure, "upgrade action failed", "agent", plan.AgentID, "action", action.Type)
			}
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	allSucceeded := true
	for _, o := range result.Outcomes {
		if !o.Success {
			allSucceeded = false
			break
		}
	}
	result.Success = allSucceeded && !anySkipped
	result.RefusedReason = refusal

	lastType := v1.UpgradeSafeAuto
	if opts.Force {
		lastType = v1.UpgradeBreakingManual
	}

	if opts.DryRun {
		result.AppliedState = computeAppliedState(plan, lastType)
		return result
	}

	if !result.Success && len(result.Outcomes) == 0 {
		// Nothing ran at all (everything skipped): don't finalize tags.
		return result
	}

	finalState := computeAppliedState(plan, lastType)
	if err := a.finalize(ctx, plan, finalState, opts); err != nil {
		result.Success = false
		if opts.Logger != nil {
			opts.Logger.Error(err, "failed to finalize upgrade tags", "agent", plan.AgentID)
		}
	}
	result.AppliedState = finalState
	return result
}

func computeAppliedState(plan *v1.UpgradePlan, lastType v1.LastUpgradeType) v1.AppliedState {
	return v1.AppliedState{
		AppliedPackages: plan.TargetVersions,
		LastUpgradeType: lastType,
		LastUpgradeAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

// runOne dispatches one UpgradeAction by type (spec.md §4.6). attach_source,
// detach_source, and update_config are recognized action types in the
// dispatch vocabulary but this planner never produces them (no "source"
// attachment concept exists without a dedicated sub-client); they fall
// through to the "unsupported" branch like any other unrecognized type.
func (a *Applier) runOne(ctx context.Context, agentID string, action v1.UpgradeAction) error {
	agents := a.client.Agents()
	switch action.Type {
	case v1.UpgradeAttachBlock, v1.UpgradeAttachTool, v1.UpgradeAttachFolder, v1.UpgradeAttachIdentity:
		if action.ResourceID == "" {
			return &errorsx.PreconditionRefused{Reason: "no remote id known for " + action.ResourceName}
		}
	}
	switch action.Type {
	case v1.UpgradeAttachBlock:
		return attachTolerant(agents.AttachBlock(ctx, agentID, action.ResourceID))
	case v1.UpgradeDetachBlock:
		return detachTolerant(agents.DetachBlock(ctx, agentID, action.ResourceID))
	case v1.UpgradeAttachTool:
		return attachTolerant(agents.AttachTool(ctx, agentID, action.ResourceID))
	case v1.UpgradeDetachTool:
		return detachTolerant(agents.DetachTool(ctx, agentID, action.ResourceID))
	case v1.UpgradeAttachFolder:
		return attachTolerant(agents.AttachFolder(ctx, agentID, action.ResourceID))
	case v1.UpgradeDetachFolder:
		return detachTolerant(agents.DetachFolder(ctx, agentID, action.ResourceID))
	case v1.UpgradeAttachIdentity:
		return attachTolerant(agents.AttachIdentity(ctx, agentID, action.ResourceID))
	case v1.UpgradeDetachIdentity:
		return detachTolerant(agents.DetachIdentity(ctx, agentID, action.ResourceID))
	case v1.UpgradeSkip:
		return nil
	default:
		return &errorsx.PreconditionRefused{Reason: "unsupported"}
	}
}

// attachTolerant treats "already attached" as success (spec.md §4.6
// idempotency). The fake/http clients don't raise a distinct
// already-attached error today, so this is a pass-through kept for the
// day one does; real conflict statuses should be classified here rather
// than at each call site.
func attachTolerant(err error) error {
	return err
}

// detachTolerant treats a 404/not-found as success (spec.md §4.6:
// "block lookups must tolerate not found on detach").
func detachTolerant(err error) error {
	var apiErr *errorsx.ApiRequestError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
		return nil
	}
	return err
}

// finalize writes applied-version and role/channel/managed tags (spec.md
// §4.6). Always called after a (possibly partial) apply, even when some
// actions failed, since the actions that did succeed should still be
// reflected.
func (a *Applier) finalize(ctx context.Context, plan *v1.UpgradePlan, state v1.AppliedState, opts ApplyOptions) error {
	agent, err := a.client.Agents().Retrieve(ctx, plan.AgentID)
	if err != nil {
		return err
	}
	next := agent.Tags
	for layer, sha := range plan.TargetVersions {
		next = tags.UpdateAppliedTags(next, string(layer), sha)
	}
	next = replaceTagNamespace(next, "role", string(plan.Role))
	next = replaceTagNamespace(next, "channel", string(plan.Channel))
	managedTag := "managed:" + opts.ReconcilerID
	if !containsTag(next, managedTag) {
		next = append(next, managedTag)
	}

	_, err = a.client.Agents().Update(ctx, plan.AgentID, map[string]any{"tags": next})
	return err
}

func replaceTagNamespace(existing []string, namespace, value string) []string {
	out := make([]string, 0, len(existing)+1)
	for _, t := range existing {
		parsed, err := tags.Parse(t)
		if err == nil && parsed.Namespace == namespace {
			continue
		}
		out = append(out, t)
	}
	return append(out, namespace+":"+value)
}

func containsTag(existing []string, tag string) bool {
	for _, t := range existing {
		if t == tag {
			return true
		}
	}
	return false
}
