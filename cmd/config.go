package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config [service...]",
	Short: "Print the generated native config without installing it",
	Long: `Renders the unit file or plist each service would be installed
with and prints it. Nothing is written to disk; output is deterministic,
so it can be diffed against a previously installed artifact.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mgr, err := setup()
		if err != nil {
			return err
		}
		refs, err := cfg.Refs(args)
		if err != nil {
			return err
		}

		for i, ref := range refs {
			content, err := mgr.GenerateConfig(ref.Name, ref.Descriptor)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("# %s\n%s", mgr.ServiceID(ref.Name), content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
