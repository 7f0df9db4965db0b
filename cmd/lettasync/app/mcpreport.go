package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/config"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/diff"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/manifest"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/mcpreport"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/merge"
)

func newMCPReportCommand(ctx context.Context, opts *config.Options) *cobra.Command {
	var markdown bool
	var verify bool

	cmd := &cobra.Command{
		Use:   "mcp-report",
		Short: "Report MCP server setup readiness (observe-only, never mutates).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCPReport(ctx, opts, markdown, verify)
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the report as Markdown instead of plain text.")
	cmd.Flags().BoolVar(&verify, "verify", false, "Perform a live MCP handshake against each sse/http server.")
	return cmd
}

func runMCPReport(ctx context.Context, opts *config.Options, markdown, verify bool) error {
	layers, err := manifest.LoadLayeredPackages(opts.BasePath, opts.OrgPath, opts.ProjectPath)
	if err != nil {
		return fmt.Errorf("load manifests: %w", err)
	}
	merged, err := merge.MergePackages(layers, merge.DefaultOptions())
	if err != nil {
		return fmt.Errorf("merge packages: %w", err)
	}

	client, err := buildAPIClient(ctx, opts)
	if err != nil {
		return fmt.Errorf("build api client: %w", err)
	}

	diffResult := diffKind(ctx, client.McpServers(), merged.DesiredState.MCPServers, v1.KindMCPServer, "", diff.DefaultOptions(), diff.DiffMCPServers)

	// desiredTools is left empty: a server's desired tool set isn't yet
	// expressed anywhere in the manifest model, so every discovered tool
	// is reported present rather than missing against an unknown target.
	desiredTools := map[string][]string{}
	discoveredTools := map[string][]string{}
	if verify {
		for _, r := range merged.DesiredState.MCPServers {
			if r.MCPServer == nil {
				continue
			}
			res := mcpreport.Verify(ctx, r.MCPServer, 10*time.Second)
			if res.Reachable {
				discoveredTools[r.Metadata.Name] = res.ToolNames
			}
		}
	}

	report := mcpreport.Build(diffResult.Classified, desiredTools, discoveredTools)
	if markdown {
		fmt.Println(report.RenderMarkdown())
	} else {
		fmt.Println(report.RenderText())
	}
	return nil
}
