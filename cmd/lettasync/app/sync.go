package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/apiclient"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/apply"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/config"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/diff"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/manifest"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/merge"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/plan"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/tags"
)

func newSyncCommand(ctx context.Context, opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile blocks, tools, folders, and MCP servers against the remote tenant.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(ctx, opts)
		},
	}
}

func runSync(ctx context.Context, opts *config.Options) error {
	layers, err := manifest.LoadLayeredPackages(opts.BasePath, opts.OrgPath, opts.ProjectPath)
	if err != nil {
		return fmt.Errorf("load manifests: %w", err)
	}

	merged, err := merge.MergePackages(layers, merge.DefaultOptions())
	if err != nil {
		return fmt.Errorf("merge packages: %w", err)
	}
	for _, w := range merged.Warnings {
		fmt.Println("warning:", w)
	}

	client, err := buildAPIClient(ctx, opts)
	if err != nil {
		return fmt.Errorf("build api client: %w", err)
	}

	reconcilerID := tags.ReconcilerID
	diffOpts := diff.DefaultOptions()

	results := []*v1.DiffResult{
		diffKind(ctx, client.Blocks(), merged.DesiredState.Blocks, v1.KindBlock, reconcilerID, diffOpts, diff.DiffBlocks),
		diffKind(ctx, client.Tools(), merged.DesiredState.Tools, v1.KindTool, reconcilerID, diffOpts, diff.DiffTools),
		diffKind(ctx, client.Folders(), merged.DesiredState.Folders, v1.KindFolder, reconcilerID, diffOpts, diff.DiffFolders),
		diffKind(ctx, client.McpServers(), merged.DesiredState.MCPServers, v1.KindMCPServer, reconcilerID, diffOpts, diff.DiffMCPServers),
	}

	reconcilePlan := plan.Build(results, plan.Options{AllowDelete: opts.AllowDelete})
	renderPlanTable(reconcilePlan)

	if opts.DryRun {
		return nil
	}

	executor := apply.NewExecutor(client, merged.DesiredState)
	result := executor.Apply(ctx, reconcilePlan, apply.Options{
		DryRun:       false,
		ReconcilerID: reconcilerID,
		Org:          opts.Org,
		Project:      opts.Project,
		SourcePath:   opts.ProjectPath,
	})

	fmt.Printf("applied: %d succeeded, %d failed\n", result.Succeeded, result.Failed)
	return apply.AggregateErrors(result)
}

type diffFunc func(desired []*v1.Resource, actual []v1.RemoteEntry, reconcilerID string, opts diff.Options) *v1.DiffResult

type lister interface {
	List(ctx context.Context, params apiclient.ListParams) ([]apiclient.Entity, error)
}

func diffKind(ctx context.Context, c lister, desired []*v1.Resource, kind v1.Kind, reconcilerID string, opts diff.Options, fn diffFunc) *v1.DiffResult {
	entities, err := c.List(ctx, apiclient.ListParams{Order: apiclient.OrderAsc, OrderBy: apiclient.OrderByName})
	if err != nil {
		return &v1.DiffResult{Kind: kind, Timestamp: time.Now().UTC().Format(time.RFC3339)}
	}
	actual := make([]v1.RemoteEntry, 0, len(entities))
	for _, e := range entities {
		md, _ := e.Fields["metadata"].(map[string]any)
		actual = append(actual, v1.RemoteEntry{
			RemoteID: e.ID,
			Name:     e.Name,
			Kind:     kind,
			Metadata: md,
			Tags:     e.Tags,
			Fields:   e.Fields,
		})
	}
	return fn(desired, actual, reconcilerID, opts)
}

func renderPlanTable(p *v1.ReconcilePlan) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Action", "Kind", "Name", "Reason"})
	for _, a := range p.Creates {
		t.AppendRow(table.Row{"create", a.ResourceKind, a.ResourceName, a.Reason})
	}
	for _, a := range p.Updates {
		t.AppendRow(table.Row{"update", a.ResourceKind, a.ResourceName, a.Reason})
	}
	for _, a := range p.Deletes {
		t.AppendRow(table.Row{"delete", a.ResourceKind, a.ResourceName, a.Reason})
	}
	fmt.Println(t.Render())
	fmt.Printf("%d to create, %d to update, %d to delete, %d unchanged\n",
		p.Summary.ToCreate, p.Summary.ToUpdate, p.Summary.ToDelete, p.Summary.Unchanged)
}
