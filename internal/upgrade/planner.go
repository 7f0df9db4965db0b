// Package upgrade computes and applies per-agent upgrade plans: attaching
// and detaching blocks/tools/folders to bring one agent's attachment set
// in line with its role's resolved bundle (spec.md §4.5, §4.6). The
// applier also dispatches identity attach/detach actions; no update
// actions are planned.
package upgrade

import (
	"sort"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/roles"
)

// AgentState is the current attachment snapshot an upgrade plan is
// computed against (spec.md §4.5 inputs).
type AgentState struct {
	ID              string
	Name            string
	Tags            []string
	AttachedBlocks  map[string]string // name -> remote id
	AttachedTools   map[string]string
	AttachedFolders map[string]string
	Role            v1.AgentRole
	Channel         v1.Channel
}

// DesiredLookup resolves each role-bundle resource name to the remote id
// the caller already knows for it (the upgrade command fills it from the
// tenant's block, tool and folder listings, matched by name). Names
// absent here are attached with an empty remote id and the applier fails
// that one action rather than guessing an id.
type DesiredLookup struct {
	BlockIDs  map[string]string
	ToolIDs   map[string]string
	FolderIDs map[string]string
}

// Planner computes UpgradePlans from role-resolved bundles against an
// agent's current attachment state.
type Planner struct{}

// NewPlanner constructs a Planner. Stateless; kept as a type for
// consistency with the rest of the package's constructor convention.
func NewPlanner() *Planner {
	return &Planner{}
}

// Plan computes an UpgradePlan for one agent (spec.md §4.5).
func (p *Planner) Plan(agent AgentState, bundle roles.Bundle, lookup DesiredLookup, targetVersions map[v1.Layer]string) *v1.UpgradePlan {
	plan := &v1.UpgradePlan{
		AgentID:        agent.ID,
		Role:           agent.Role,
		Channel:        agent.Channel,
		TargetVersions: targetVersions,
		Summary: v1.UpgradeSummary{
			AttachCounts: map[v1.UpgradeResourceKind]int{},
			UpdateCounts: map[v1.UpgradeResourceKind]int{},
			DetachCounts: map[v1.UpgradeResourceKind]int{},
		},
	}

	plan.Actions = append(plan.Actions, diffAttachments(v1.UpgradeKindBlock, bundle.BlockNames, agent.AttachedBlocks, lookup.BlockIDs,
		v1.UpgradeAttachBlock, v1.UpgradeDetachBlock)...)
	plan.Actions = append(plan.Actions, diffAttachments(v1.UpgradeKindTool, bundle.ToolNames, agent.AttachedTools, lookup.ToolIDs,
		v1.UpgradeAttachTool, v1.UpgradeDetachTool)...)
	plan.Actions = append(plan.Actions, diffAttachments(v1.UpgradeKindFolder, bundle.FolderNames, agent.AttachedFolders, lookup.FolderIDs,
		v1.UpgradeAttachFolder, v1.UpgradeDetachFolder)...)

	for _, a := range plan.Actions {
		switch a.Classification {
		case v1.ClassificationSafe:
			plan.Summary.SafeChanges++
		case v1.ClassificationBreaking:
			plan.Summary.BreakingChanges++
		}
		plan.Summary.TotalChanges++
		switch a.Type {
		case v1.UpgradeAttachBlock, v1.UpgradeAttachTool, v1.UpgradeAttachFolder, v1.UpgradeAttachIdentity:
			plan.Summary.AttachCounts[a.ResourceKind]++
		case v1.UpgradeUpdateBlock, v1.UpgradeUpdateTool, v1.UpgradeUpdateFolder:
			plan.Summary.UpdateCounts[a.ResourceKind]++
		case v1.UpgradeDetachBlock, v1.UpgradeDetachTool, v1.UpgradeDetachFolder, v1.UpgradeDetachIdentity:
			plan.Summary.DetachCounts[a.ResourceKind]++
		}
		if a.Type == v1.UpgradeDetachBlock || a.Type == v1.UpgradeDetachTool ||
			a.Type == v1.UpgradeDetachFolder || a.Type == v1.UpgradeDetachIdentity {
			plan.HasBreakingChanges = true
		}
	}

	// Gating rule: a pinned channel makes the whole plan breaking
	// regardless of content (spec.md §4.5).
	if agent.Channel == v1.ChannelPinned {
		plan.HasBreakingChanges = true
	}

	plan.HasChanges = len(plan.Actions) > 0
	plan.IsUpToDate = !plan.HasChanges
	return plan
}

// diffAttachments computes should-be-attached / should-remain /
// should-be-removed sets for one attachable kind (spec.md §4.5 process).
// Entries in both desired and attached are no-ops and never surfaced as
// actions: this engine has no per-attachment content to drift against, so
// "update_X" is never produced by this planner (only attach/detach).
func diffAttachments(kind v1.UpgradeResourceKind, desiredNames []string, attached map[string]string, desiredIDs map[string]string,
	attachType, detachType v1.UpgradeActionType) []v1.UpgradeAction {
	desired := make(map[string]bool, len(desiredNames))
	for _, n := range desiredNames {
		desired[n] = true
	}

	var actions []v1.UpgradeAction
	sortedDesired := append([]string(nil), desiredNames...)
	sort.Strings(sortedDesired)
	for _, name := range sortedDesired {
		if _, ok := attached[name]; ok {
			continue
		}
		actions = append(actions, v1.UpgradeAction{
			Type:           attachType,
			ResourceKind:   kind,
			ResourceName:   name,
			ResourceID:     desiredIDs[name],
			Reason:         "role bundle requires attachment",
			Classification: v1.ClassificationSafe,
		})
	}

	var attachedNames []string
	for name := range attached {
		attachedNames = append(attachedNames, name)
	}
	sort.Strings(attachedNames)
	for _, name := range attachedNames {
		if desired[name] {
			continue
		}
		actions = append(actions, v1.UpgradeAction{
			Type:           detachType,
			ResourceKind:   kind,
			ResourceName:   name,
			ResourceID:     attached[name],
			Reason:         "no longer part of role bundle",
			Classification: v1.ClassificationBreaking,
		})
	}
	return actions
}
