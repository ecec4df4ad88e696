package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"bunman/internal/svcmgr"
)

var startCmd = &cobra.Command{
	Use:   "start [service...]",
	Short: "Start services",
	Long: `Starts each named service through the native manager and confirms
it reached a running state. Services that are already active are skipped.
With no arguments, all configured services are started.`,
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
				return m.Start(ctx, name)
			},
			svcmgr.BatchOptions{
				ShouldSkip: func(ctx context.Context, m svcmgr.ServiceManager, name string, _ svcmgr.Descriptor) bool {
					return m.IsActive(ctx, name)
				},
				Progress: progressPrinter("started"),
			})

		return printSummary("start", sum)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
