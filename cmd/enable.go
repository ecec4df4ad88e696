package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"bunman/internal/svcmgr"
)

var enableCmd = &cobra.Command{
	Use:   "enable [service...]",
	Short: "Enable services to start at boot or login",
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
				return m.Enable(ctx, name)
			},
			svcmgr.BatchOptions{
				// Enabling changes boot behavior, not the current state.
				NoVerify: true,
				Progress: progressPrinter("enabled"),
			})

		return printSummary("enable", sum)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable [service...]",
	Short: "Stop services from starting at boot or login",
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
				return m.Disable(ctx, name)
			},
			svcmgr.BatchOptions{
				NoVerify: true,
				Progress: progressPrinter("disabled"),
			})

		return printSummary("disable", sum)
	},
}

func init() {
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}
