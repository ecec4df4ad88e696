package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"bunman/internal/svcmgr"
)

var (
	flagFollow bool
	flagLines  int
	flagSince  string
)

var logsCmd = &cobra.Command{
	Use:   "logs [service...]",
	Short: "Show service logs",
	Long: `Prints native log output (journal on Linux, log files on macOS).
With several services, or with none named, lines are interleaved into one
stream with a color-coded marker per service. Follow mode streams until
interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, mgr, err := setup()
		if err != nil {
			return err
		}
		refs, err := cfg.Refs(args)
		if err != nil {
			return err
		}

		opts := svcmgr.LogOptions{
			Follow: flagFollow,
			Lines:  flagLines,
			Since:  flagSince,
		}
		ctx := cmdContext()

		// A single service streams untagged, straight through.
		if len(refs) == 1 {
			return mgr.Logs(ctx, refs[0].Name, opts, os.Stdout)
		}

		names := make([]string, len(refs))
		for i, ref := range refs {
			names[i] = ref.Name
		}

		streamer := svcmgr.NewMultiStreamer(mgr, useColor)
		return streamer.Stream(ctx, names, opts, os.Stdout)
	},
}

func init() {
	logsCmd.Flags().BoolVarP(&flagFollow, "follow", "f", false, "stream new log lines until interrupted")
	logsCmd.Flags().IntVarP(&flagLines, "lines", "n", 100, "number of lines to show initially")
	logsCmd.Flags().StringVar(&flagSince, "since", "", "only show entries since this time")
	rootCmd.AddCommand(logsCmd)
}
