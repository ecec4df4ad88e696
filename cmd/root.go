package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bunman/internal/config"
	"bunman/internal/logger"
	"bunman/internal/svcmgr"
)

// Process exit codes, one per error kind so scripts can branch on them.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfig      = 2
	exitNotFound    = 3
	exitPermission  = 4
	exitUnsupported = 5
)

var (
	flagConfig  string
	flagVerbose bool
	flagUser    bool

	// useColor is resolved once at startup from NO_COLOR/FORCE_COLOR and
	// the terminal, then threaded into output helpers as a plain value.
	useColor bool
)

var rootCmd = &cobra.Command{
	Use:   "bunman",
	Short: "Manage application services through systemd or launchd",
	Long: `bunman registers long-running applications with the host's native
service manager (systemd on Linux, launchd on macOS) and drives their
lifecycle through it. It never supervises a process itself.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug := flagVerbose || os.Getenv("BUNMAN_DEBUG") != ""
		logger.Init(debug)
		useColor = resolveColor()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to bunman.yaml")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagUser, "user", false, "operate on the user service manager (systemd only)")
}

// Execute runs the CLI and maps the error kind onto the process exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(exitCode(err))
	}
}

// exitCode classifies an error chain into an exit code.
func exitCode(err error) int {
	var (
		validation  *svcmgr.ValidationError
		notFound    *svcmgr.NotFoundError
		permission  *svcmgr.PermissionError
		unsupported *svcmgr.UnsupportedPlatformError
	)
	switch {
	case errors.As(err, &validation):
		return exitConfig
	case errors.As(err, &notFound):
		return exitNotFound
	case errors.As(err, &permission):
		return exitPermission
	case errors.As(err, &unsupported):
		return exitUnsupported
	default:
		return exitFailure
	}
}

// printError writes the one-line message plus a remediation hint if the
// error carries one.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", paint("error:", colorRed), err)

	var permission *svcmgr.PermissionError
	if errors.As(err, &permission) && permission.Hint != "" {
		fmt.Fprintf(os.Stderr, "hint: %s\n", permission.Hint)
	}
}

// resolveColor decides color output once: NO_COLOR wins, FORCE_COLOR
// overrides the terminal check, otherwise color only on a terminal.
func resolveColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// scope returns the requested systemd scope.
func scope() svcmgr.Scope {
	if flagUser {
		return svcmgr.ScopeUser
	}
	return svcmgr.ScopeSystem
}

// setup loads the config file and selects the host backend.
func setup() (*config.Config, svcmgr.ServiceManager, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	mgr, err := svcmgr.Select(scope(), cfg.Prefix, cfg.LabelDomain)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("selected backend", "backend", mgr.Name(), "scope", scope().String())

	if !mgr.Available(cmdContext()) {
		return nil, nil, fmt.Errorf("%w: %s did not respond", svcmgr.ErrManagerUnavailable, mgr.Name())
	}

	return cfg, mgr, nil
}
