package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"bunman/internal/svcmgr"
)

var reloadCmd = &cobra.Command{
	Use:   "reload [service...]",
	Short: "Reload service configuration",
	Long: `Asks each service to reread its configuration: systemd issues a
reload to the unit, launchd bounces the job so the plist is reread. With
no arguments, all configured services are reloaded.`,
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
				return m.Reload(ctx, name)
			},
			svcmgr.BatchOptions{
				Progress: progressPrinter("reloaded"),
			})

		return printSummary("reload", sum)
	},
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}
