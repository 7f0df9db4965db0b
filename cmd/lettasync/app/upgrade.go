package app

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/apiclient"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/batch"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/config"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/roles"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/tags"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/upgrade"
)

const spinnerInterval = 100 * time.Millisecond

func newUpgradeCommand(ctx context.Context, opts *config.Options) *cobra.Command {
	var agentIDs []string

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Bring agents' role-bundle attachments up to date in batch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpgrade(ctx, opts, agentIDs)
		},
	}
	cmd.Flags().StringSliceVar(&agentIDs, "agent", nil, "Agent ids to upgrade (repeatable). Defaults to every agent the tenant returns.")
	return cmd
}

// pipeline adapts internal/upgrade's Planner/Applier to batch.AgentPlanner/
// batch.AgentApplier, resolving each agent's current attachment state and
// role bundle from the live tenant rather than a pre-built lookup.
type pipeline struct {
	client  apiclient.ApiClient
	planner *upgrade.Planner
	applier *upgrade.Applier
	lookup  upgrade.DesiredLookup
	force   bool
	dryRun  bool
}

func (p *pipeline) PlanFor(ctx context.Context, agentID string) (*v1.UpgradePlan, error) {
	agent, err := p.client.Agents().Retrieve(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("retrieve agent %s: %w", agentID, err)
	}
	state, role, channel, err := agentState(ctx, p.client, agent)
	if err != nil {
		return nil, err
	}

	bundle := roles.Resolve(role, roles.Context{})
	return p.planner.Plan(state, bundle, p.lookup, nil), nil
}

func (p *pipeline) ApplyFor(ctx context.Context, plan *v1.UpgradePlan) (*v1.ApplyUpgradeResult, error) {
	return p.applier.Apply(ctx, plan, upgrade.ApplyOptions{
		DryRun:       p.dryRun,
		Force:        p.force,
		ReconcilerID: tags.ReconcilerID,
	}), nil
}

func agentState(ctx context.Context, client apiclient.ApiClient, agent apiclient.Entity) (upgrade.AgentState, v1.AgentRole, v1.Channel, error) {
	role, channel := v1.RoleAgent, v1.ChannelStable
	for _, raw := range agent.Tags {
		t, err := tags.Parse(raw)
		if err != nil {
			continue
		}
		switch t.Namespace {
		case "role":
			role = v1.AgentRole(t.Value)
		case "channel":
			channel = v1.Channel(t.Value)
		}
	}

	blocks, err := client.Agents().ListBlocks(ctx, agent.ID)
	if err != nil {
		return upgrade.AgentState{}, role, channel, fmt.Errorf("list blocks for agent %s: %w", agent.ID, err)
	}
	tools, err := client.Agents().ListTools(ctx, agent.ID)
	if err != nil {
		return upgrade.AgentState{}, role, channel, fmt.Errorf("list tools for agent %s: %w", agent.ID, err)
	}
	folders, err := client.Agents().ListFolders(ctx, agent.ID)
	if err != nil {
		return upgrade.AgentState{}, role, channel, fmt.Errorf("list folders for agent %s: %w", agent.ID, err)
	}

	return upgrade.AgentState{
		ID:              agent.ID,
		Name:            agent.Name,
		Tags:            agent.Tags,
		AttachedBlocks:  entityIDsByName(blocks),
		AttachedTools:   entityIDsByName(tools),
		AttachedFolders: entityIDsByName(folders),
		Role:            role,
		Channel:         channel,
	}, role, channel, nil
}

func entityIDsByName(entities []apiclient.Entity) map[string]string {
	out := make(map[string]string, len(entities))
	for _, e := range entities {
		out[e.Name] = e.ID
	}
	return out
}

func resolveDesiredLookup(ctx context.Context, client apiclient.ApiClient) (upgrade.DesiredLookup, error) {
	blocks, err := client.Blocks().List(ctx, apiclient.ListParams{})
	if err != nil {
		return upgrade.DesiredLookup{}, err
	}
	tools, err := client.Tools().List(ctx, apiclient.ListParams{})
	if err != nil {
		return upgrade.DesiredLookup{}, err
	}
	folders, err := client.Folders().List(ctx, apiclient.ListParams{})
	if err != nil {
		return upgrade.DesiredLookup{}, err
	}
	return upgrade.DesiredLookup{
		BlockIDs:  entityIDsByName(blocks),
		ToolIDs:   entityIDsByName(tools),
		FolderIDs: entityIDsByName(folders),
	}, nil
}

func runUpgrade(ctx context.Context, opts *config.Options, agentIDs []string) error {
	client, err := buildAPIClient(ctx, opts)
	if err != nil {
		return fmt.Errorf("build api client: %w", err)
	}

	if len(agentIDs) == 0 {
		entities, err := client.Agents().List(ctx, apiclient.ListParams{Order: apiclient.OrderAsc, OrderBy: apiclient.OrderByName})
		if err != nil {
			return fmt.Errorf("list agents: %w", err)
		}
		for _, e := range entities {
			agentIDs = append(agentIDs, e.ID)
		}
	}

	lookup, err := resolveDesiredLookup(ctx, client)
	if err != nil {
		return fmt.Errorf("resolve desired resource ids: %w", err)
	}

	p := &pipeline{
		client:  client,
		planner: upgrade.NewPlanner(),
		applier: upgrade.NewApplier(client),
		lookup:  lookup,
		force:   opts.Force,
		dryRun:  opts.DryRun,
	}
	canProceed := func(plan *v1.UpgradePlan, force bool) string {
		if plan.HasBreakingChanges && !force {
			return "breaking change requires --force"
		}
		if plan.Channel == v1.ChannelPinned && !force {
			return "pinned channel requires --force"
		}
		return ""
	}

	executor := batch.NewExecutor(p, p, canProceed)

	s := spinner.New(spinner.CharSets[9], spinnerInterval)
	s.Start()
	defer s.Stop()

	result := executor.Run(ctx, agentIDs, batch.Options{
		Concurrency: opts.Concurrency,
		Force:       opts.Force,
		DryRun:      opts.DryRun,
		OnProgress: func(progress v1.BatchProgress) {
			s.Suffix = fmt.Sprintf(" upgrading %s (%d/%d)", progress.CurrentAgent, progress.Current, progress.Total)
		},
	})
	s.Stop()

	renderBatchTable(result)
	return nil
}

func renderBatchTable(result *v1.BatchUpgradeResult) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Agent", "Status", "Reason"})
	for _, r := range result.Results {
		reason := r.Reason
		if reason == "" {
			reason = r.Err
		}
		t.AppendRow(table.Row{r.AgentID, r.Status, reason})
	}
	fmt.Println(t.Render())
	fmt.Printf("%d total: %d succeeded, %d failed, %d skipped, %d already up to date\n",
		result.Stats.Total, result.Stats.Succeeded, result.Stats.Failed, result.Stats.Skipped, result.Stats.UpToDate)
}
