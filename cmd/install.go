package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"bunman/internal/svcmgr"
)

var installCmd = &cobra.Command{
	Use:   "install [service...]",
	Short: "Register services with the native service manager",
	Long: `Writes the native config artifact (unit file or plist) for each
service, reloads the manager and enables the service for start. Safe to
repeat: an unchanged config converges to the same installed state.
With no arguments, all configured services are installed.`,
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
				return m.Install(ctx, name, d)
			},
			svcmgr.BatchOptions{
				// Installed services are registered but not yet started,
				// so there is no service state to confirm.
				NoVerify: true,
				Progress: progressPrinter("installed"),
			})

		return printSummary("install", sum)
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
