package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"bunman/internal/svcmgr"
)

var restartCmd = &cobra.Command{
	Use:   "restart [service...]",
	Short: "Restart services",
	Long: `Restarts each named service and confirms it came back up. With no
arguments, all configured services are restarted.`,
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
				return m.Restart(ctx, name)
			},
			svcmgr.BatchOptions{
				Progress: progressPrinter("restarted"),
			})

		return printSummary("restart", sum)
	},
}

func init() {
	rootCmd.AddCommand(restartCmd)
}
