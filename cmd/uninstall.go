package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"bunman/internal/svcmgr"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall [service...]",
	Short: "Remove services from the native service manager",
	Long: `Stops each service if running, unloads and disables it, and
deletes its native config artifact. A service that was never installed is
recorded as a failure without stopping the rest of the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mgr, err := setup()
		if err != nil {
			return err
		}
		refs, err := cfg.Refs(args)
		if err != nil {
			return err
		}

		exec := svcmgr.NewBatchExecutor(mgr)
		sum := exec.Execute(cmdContext(), refs,
			func(ctx context.Context, m svcmgr.ServiceManager, name string, d svcmgr.Descriptor) error {
				return m.Remove(ctx, name)
			},
			svcmgr.BatchOptions{
				// After removal the manager no longer knows the service,
				// so there is no state to confirm.
				NoVerify: true,
				Progress: progressPrinter("removed"),
			})

		return printSummary("uninstall", sum)
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
