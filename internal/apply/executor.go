// Package apply executes a ReconcilePlan against the remote platform
// (spec.md §4.4): creates, then updates (adopt treated as update), then
// deletes, with per-action error isolation and dry-run support.
package apply

import (
	"context"
	"time"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/apiclient"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/errorsx"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/log"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/tags"
)

// Options configures a single Apply run.
type Options struct {
	DryRun       bool
	ReconcilerID string
	Org          string
	Project      string
	PackageVer   string
	SourcePath   string
	Logger       log.Logger
}

// Executor applies a ReconcilePlan via an apiclient.ApiClient.
type Executor struct {
	client  apiclient.ApiClient
	desired *v1.DesiredState
	metrics *metrics
}

// NewExecutor builds an Executor. desired supplies the full resource
// bodies plan actions only carry field-level diffs for.
func NewExecutor(client apiclient.ApiClient, desired *v1.DesiredState) *Executor {
	return &Executor{client: client, desired: desired, metrics: newMetrics()}
}

// Apply runs plan to completion, in creates -> updates -> deletes order
// (spec.md §4.4). Dry-run reports every action as successful without
// calling the client.
func (e *Executor) Apply(ctx context.Context, plan *v1.ReconcilePlan, opts Options) *v1.ApplyResult {
	result := &v1.ApplyResult{PlanID: plan.ID, DryRun: opts.DryRun}

	for _, action := range plan.Creates {
		result.Outcomes = append(result.Outcomes, e.runOne(ctx, action, opts))
	}
	for _, action := range plan.Updates {
		result.Outcomes = append(result.Outcomes, e.runOne(ctx, action, opts))
	}
	for _, action := range plan.Deletes {
		result.Outcomes = append(result.Outcomes, e.runOne(ctx, action, opts))
	}

	for _, o := range result.Outcomes {
		if o.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	return result
}

func (e *Executor) runOne(ctx context.Context, action v1.PlanAction, opts Options) v1.ActionOutcome {
	e.metrics.observeStart(action)
	if opts.DryRun {
		outcome := v1.ActionOutcome{Action: action, Success: true, RemoteID: action.RemoteID}
		e.metrics.observeResult(action, true)
		return outcome
	}

	var err error
	var remoteID string
	switch action.Type {
	case v1.ActionCreate:
		remoteID, err = e.create(ctx, action, opts)
	case v1.ActionUpdate, v1.ActionAdopt:
		remoteID, err = e.update(ctx, action, opts)
	case v1.ActionDelete:
		err = e.delete(ctx, action)
		remoteID = action.RemoteID
	default:
		// Skip actions never reach the executor: plan.Build only
		// buckets create/update/adopt/delete into Creates/Updates/Deletes.
	}

	success := err == nil
	e.metrics.observeResult(action, success)
	outcome := v1.ActionOutcome{Action: action, Success: success, RemoteID: remoteID}
	if err != nil {
		failure := &errorsx.ActionFailed{
			ResourceKind: string(action.ResourceKind),
			ResourceName: action.ResourceName,
			ActionType:   string(action.Type),
			Err:          err,
		}
		outcome.Error = failure.Error()
		if opts.Logger != nil {
			opts.Logger.Error(failure, "action failed", "kind", action.ResourceKind, "name", action.ResourceName)
		}
	}
	return outcome
}

func (e *Executor) findDesired(kind v1.Kind, name string) *v1.Resource {
	for _, r := range e.desired.ByKind(kind) {
		if r.Metadata.Name == name {
			return r
		}
	}
	return nil
}

func (e *Executor) create(ctx context.Context, action v1.PlanAction, opts Options) (string, error) {
	r := e.findDesired(action.ResourceKind, action.ResourceName)
	if r == nil {
		return "", &errorsx.PreconditionRefused{Reason: "create action references a resource no longer in desired state"}
	}
	now := time.Now()

	switch action.ResourceKind {
	case v1.KindBlock:
		meta := stampMetadata(opts.ReconcilerID, baseMetadata(opts, r.Block.PackageVer), action, r.Metadata.Name, now)
		entity, err := e.client.Blocks().Create(ctx, blockBody(r.Metadata.Name, r.Block, meta))
		if err != nil {
			return "", err
		}
		return entity.ID, nil
	case v1.KindTool:
		body := toolBody(r.Metadata.Name, r.Tool)
		managementTags := toolManagementTags(opts, r.Tool.PackageVer, now)
		body["tags"] = tags.Merge(managementTags, r.Tool.Tags, tags.DefaultMergeOptions())
		entity, err := e.client.Tools().Create(ctx, body)
		if err != nil {
			return "", err
		}
		return entity.ID, nil
	case v1.KindFolder:
		meta := stampMetadata(opts.ReconcilerID, baseMetadata(opts, r.Folder.PackageVer), action, r.Metadata.Name, now)
		entity, err := e.client.Folders().Create(ctx, folderBody(r.Metadata.Name, r.Folder, meta))
		if err != nil {
			return "", err
		}
		return entity.ID, nil
	default:
		return "", &errorsx.PreconditionRefused{Reason: "apply executor has no create handler for kind " + string(action.ResourceKind)}
	}
}

func (e *Executor) update(ctx context.Context, action v1.PlanAction, opts Options) (string, error) {
	if action.RemoteID == "" {
		return "", &errorsx.PreconditionRefused{Reason: "update/adopt action missing remote id"}
	}
	r := e.findDesired(action.ResourceKind, action.ResourceName)
	if r == nil {
		return "", &errorsx.PreconditionRefused{Reason: "update action references a resource no longer in desired state"}
	}
	now := time.Now()

	switch action.ResourceKind {
	case v1.KindBlock:
		meta := stampMetadata(opts.ReconcilerID, baseMetadata(opts, r.Block.PackageVer), action, action.ResourceName, now)
		_, err := e.client.Blocks().Update(ctx, action.RemoteID, blockBody(r.Metadata.Name, r.Block, meta))
		return action.RemoteID, err
	case v1.KindTool:
		body := toolBody(r.Metadata.Name, r.Tool)
		managementTags := toolManagementTags(opts, r.Tool.PackageVer, now)
		body["tags"] = tags.Merge(managementTags, r.Tool.Tags, tags.DefaultMergeOptions())
		_, err := e.client.Tools().Update(ctx, action.RemoteID, body)
		return action.RemoteID, err
	case v1.KindFolder:
		meta := stampMetadata(opts.ReconcilerID, baseMetadata(opts, r.Folder.PackageVer), action, action.ResourceName, now)
		_, err := e.client.Folders().Update(ctx, action.RemoteID, folderBody(r.Metadata.Name, r.Folder, meta))
		return action.RemoteID, err
	default:
		return "", &errorsx.PreconditionRefused{Reason: "apply executor has no update handler for kind " + string(action.ResourceKind)}
	}
}

func (e *Executor) delete(ctx context.Context, action v1.PlanAction) error {
	if action.RemoteID == "" {
		return &errorsx.PreconditionRefused{Reason: "delete action missing remote id"}
	}
	var err error
	switch action.ResourceKind {
	case v1.KindBlock:
		err = e.client.Blocks().Delete(ctx, action.RemoteID)
	case v1.KindTool:
		err = e.client.Tools().Delete(ctx, action.RemoteID)
	case v1.KindFolder:
		err = e.client.Folders().Delete(ctx, action.RemoteID)
	default:
		return &errorsx.PreconditionRefused{Reason: "apply executor has no delete handler for kind " + string(action.ResourceKind)}
	}
	// Delete tolerates "not found" as idempotent success (spec.md §4.4).
	if apiErr, ok := err.(*errorsx.ApiRequestError); ok && apiErr.StatusCode == 404 {
		return nil
	}
	return err
}

func baseMetadata(opts Options, packageVer string) v1.ManagedMetadata {
	ver := packageVer
	if opts.PackageVer != "" {
		ver = opts.PackageVer
	}
	return v1.ManagedMetadata{
		Org:            opts.Org,
		Project:        opts.Project,
		PackageVersion: ver,
		SourcePath:     opts.SourcePath,
	}
}

func toolManagementTags(opts Options, packageVer string, now time.Time) []string {
	ver := packageVer
	if opts.PackageVer != "" {
		ver = opts.PackageVer
	}
	out := []string{tags.NamespaceManagedBy + ":" + opts.ReconcilerID}
	if opts.Org != "" {
		out = append(out, "org:"+opts.Org)
	}
	if opts.Project != "" {
		out = append(out, "project:"+opts.Project)
	}
	if ver != "" {
		out = append(out, tags.NamespacePackageVersion+":"+ver)
	}
	out = append(out, tags.NamespaceLastSynced+":"+now.UTC().Format(time.RFC3339))
	return out
}
