package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [service...]",
	Short: "Show service status",
	Long: `Queries the native manager for each service and prints a status
table. Status fetches run concurrently; a service the manager cannot
account for shows as unknown. With no arguments, all configured services
are listed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mgr, err := setup()
		if err != nil {
			return err
		}
		refs, err := cfg.Refs(args)
		if err != nil {
			return err
		}

		names := make([]string, len(refs))
		for i, ref := range refs {
			names[i] = ref.Name
		}

		printStatuses(mgr.AllStatuses(cmdContext(), names))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
