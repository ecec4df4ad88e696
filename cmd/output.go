package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"bunman/internal/svcmgr"
)

// ANSI colors for result lines
const (
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorDim    = "\x1b[2m"
	colorOff    = "\x1b[0m"
)

// paint wraps s in an ANSI color when color output is enabled.
func paint(s, color string) string {
	if !useColor {
		return s
	}
	return color + s + colorOff
}

// cmdContext returns a context cancelled by SIGINT/SIGTERM so follow-mode
// log streams and in-flight native commands wind down cleanly on Ctrl+C.
func cmdContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

// progressPrinter returns a batch Progress callback that prints one line
// per service as its result is recorded.
func progressPrinter(verb string) func(svcmgr.BatchResult) {
	return func(res svcmgr.BatchResult) {
		switch {
		case res.Skipped:
			fmt.Printf("%s %s (skipped)\n", paint("-", colorDim), res.Name)
		case res.Success:
			fmt.Printf("%s %s %s\n", paint("+", colorGreen), verb, res.Name)
		default:
			fmt.Printf("%s %s %s: %s\n", paint("x", colorRed), verb, res.Name, res.Err)
		}
	}
}

// printSummary prints the aggregate line and returns an error when any
// service failed, so the command exits non-zero.
func printSummary(verb string, sum svcmgr.BatchSummary) error {
	fmt.Printf("\n%d total: %d succeeded, %d failed, %d skipped\n",
		sum.Total, sum.Succeeded, sum.Failed, sum.Skipped)

	if sum.Failed > 0 {
		return fmt.Errorf("%s failed for %d of %d services", verb, sum.Failed, sum.Total)
	}
	return nil
}

// printStatuses renders the status table.
func printStatuses(statuses []svcmgr.ServiceStatus) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tSTATE\tPID\tMEMORY\tCPU\tUPTIME")

	for _, st := range statuses {
		pid := "-"
		if st.PID > 0 {
			pid = fmt.Sprintf("%d", st.PID)
		}
		mem := "-"
		if st.MemoryBytes > 0 {
			mem = formatBytes(st.MemoryBytes)
		}
		cpu := "-"
		if st.CPUPercent > 0 {
			cpu = fmt.Sprintf("%.1f%%", st.CPUPercent)
		}
		uptime := "-"
		if st.UptimeSeconds > 0 {
			uptime = formatDuration(st.UptimeSeconds)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			st.ID, paintState(st.State), pid, mem, cpu, uptime)
	}
	_ = tw.Flush()
}

func paintState(s svcmgr.State) string {
	switch s {
	case svcmgr.StateActive:
		return paint(s.String(), colorGreen)
	case svcmgr.StateFailed:
		return paint(s.String(), colorRed)
	case svcmgr.StateActivating, svcmgr.StateDeactivating:
		return paint(s.String(), colorYellow)
	default:
		return s.String()
	}
}

func formatBytes(b uint64) string {
	switch {
	case b >= 1024*1024*1024:
		return fmt.Sprintf("%.1fG", float64(b)/(1024*1024*1024))
	case b >= 1024*1024:
		return fmt.Sprintf("%.1fM", float64(b)/(1024*1024))
	case b >= 1024:
		return fmt.Sprintf("%.1fK", float64(b)/1024)
	default:
		return fmt.Sprintf("%dB", b)
	}
}

func formatDuration(secs int64) string {
	switch {
	case secs >= 86400:
		return fmt.Sprintf("%dd%dh", secs/86400, secs%86400/3600)
	case secs >= 3600:
		return fmt.Sprintf("%dh%dm", secs/3600, secs%3600/60)
	case secs >= 60:
		return fmt.Sprintf("%dm%ds", secs/60, secs%60)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}
