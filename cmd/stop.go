package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"bunman/internal/svcmgr"
)

var stopCmd = &cobra.Command{
	Use:   "stop [service...]",
	Short: "Stop services",
	Long: `Stops each named service and confirms it left the running state.
Services that are already stopped are skipped. With no arguments, all
configured services are stopped.`,
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
				return m.Stop(ctx, name)
			},
			svcmgr.BatchOptions{
				ShouldSkip: func(ctx context.Context, m svcmgr.ServiceManager, name string, _ svcmgr.Descriptor) bool {
					return !m.IsActive(ctx, name)
				},
				SuccessStates: []svcmgr.State{svcmgr.StateInactive, svcmgr.StateDeactivating},
				Progress:      progressPrinter("stopped"),
			})

		return printSummary("stop", sum)
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
