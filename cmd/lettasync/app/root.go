// Package app assembles the lettasync command tree: one cobra command per
// operation, each a thin wrapper around the library packages that do the
// actual reconciliation work.
package app

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Smarty-Pants-Inc/letta-sync/internal/config"
	"github.com/Smarty-Pants-Inc/letta-sync/internal/log"
)

// NewRootCommand builds the lettasync command tree.
func NewRootCommand(ctx context.Context) *cobra.Command {
	opts := config.NewOptions()
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "lettasync",
		Short: "Reconcile a Letta tenant against layered manifests.",
		Long:  "lettasync compares Block/Tool/Folder/MCPServer/Template/Identity/AgentPolicy manifests across base/org/project layers against a remote Letta tenant, and applies or reports the difference.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadViper(v, cmd.Flags()); err != nil {
				return err
			}
			if err := opts.Complete(); err != nil {
				return err
			}
			if errs := opts.Validate(); len(errs) > 0 {
				return errs[0]
			}
			log.Init(opts.LogOptions)
			return nil
		},
	}

	opts.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newSyncCommand(ctx, opts),
		newUpgradeCommand(ctx, opts),
		newMCPReportCommand(ctx, opts),
	)

	return cmd
}
