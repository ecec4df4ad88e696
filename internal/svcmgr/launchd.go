package svcmgr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/shirou/gopsutil/v3/process"

	"bunman/internal/logger"
)

const launchdHint = "check ownership of ~/Library/LaunchAgents, or run without sudo"

// processStats fetches resource usage for a pid. launchctl reports no
// memory or CPU figures, so the backend reads them from the process table.
type processStats func(ctx context.Context, pid int) (mem uint64, cpu float64, uptimeSecs int64)

// gopsutilStats is the production processStats backed by gopsutil.
func gopsutilStats(ctx context.Context, pid int) (uint64, float64, int64) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return 0, 0, 0
	}

	var mem uint64
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		mem = mi.RSS
	}

	var cpu float64
	if pct, err := p.CPUPercentWithContext(ctx); err == nil {
		cpu = pct
	}

	var uptime int64
	if created, err := p.CreateTimeWithContext(ctx); err == nil && created > 0 {
		uptime = int64(time.Since(time.UnixMilli(created)).Seconds())
		if uptime < 0 {
			uptime = 0
		}
	}

	return mem, cpu, uptime
}

// LaunchdBackend manages services as launchd user agents on macOS. It owns
// the reverse-DNS label convention and the LaunchAgents/log directories.
// Services run in the calling user's domain; launchd has no equivalent of
// the systemd system/user scope split for this tool's purposes.
type LaunchdBackend struct {
	// AgentsDir is where plists are written (~/Library/LaunchAgents)
	AgentsDir string
	// LogDir is where service stdout/stderr files land
	LogDir string
	// LabelDomain is the reverse-DNS prefix for job labels
	LabelDomain string
	// LaunchctlPath is the launchctl binary
	LaunchctlPath string
	// Concurrency bounds the AllStatuses fan-out
	Concurrency int

	parser *LaunchdStatusParser
	run    runnerFunc
	stats  processStats
}

// NewLaunchdBackend creates a backend rooted in the user's home directory.
func NewLaunchdBackend(labelDomain string) *LaunchdBackend {
	home, _ := os.UserHomeDir()

	return &LaunchdBackend{
		AgentsDir:     filepath.Join(home, "Library", "LaunchAgents"),
		LogDir:        filepath.Join(home, "Library", "Logs", "bunman"),
		LabelDomain:   labelDomain,
		LaunchctlPath: "launchctl",
		Concurrency:   DefaultStatusConcurrency,
		parser:        &LaunchdStatusParser{},
		run:           execRunner,
		stats:         gopsutilStats,
	}
}

func (b *LaunchdBackend) Name() string {
	return "launchd"
}

// ServiceID returns the job label, e.g. "com.bunman.api".
func (b *LaunchdBackend) ServiceID(name string) string {
	return b.LabelDomain + "." + name
}

func (b *LaunchdBackend) plistPath(name string) string {
	return filepath.Join(b.AgentsDir, b.ServiceID(name)+".plist")
}

func (b *LaunchdBackend) logPath(name string) string {
	return filepath.Join(b.LogDir, name+".log")
}

// Available reports whether launchctl responds.
func (b *LaunchdBackend) Available(ctx context.Context) bool {
	_, _, err := b.run(ctx, b.LaunchctlPath, "list")
	return err == nil
}

// GenerateConfig renders the plist XML without touching disk.
func (b *LaunchdBackend) GenerateConfig(name string, d Descriptor) (string, error) {
	if d.Command == "" {
		return "", &ValidationError{Service: d.Name, Field: "command", Reason: "must not be empty"}
	}
	return GeneratePlist(b.ServiceID(name), d, b.logPath(name)), nil
}

// Install writes the plist atomically and (re)loads the job. An already
// loaded job is unloaded first so config changes take effect; the unload
// failing because the job was never loaded is not an error.
func (b *LaunchdBackend) Install(ctx context.Context, name string, d Descriptor) error {
	content, err := b.GenerateConfig(name, d)
	if err != nil {
		return err
	}

	for _, dir := range []string{b.AgentsDir, b.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			if errors.Is(err, os.ErrPermission) {
				return &PermissionError{Op: "install", Path: dir, Hint: launchdHint, Err: err}
			}
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	path := b.plistPath(name)
	_, _, _ = b.run(ctx, b.LaunchctlPath, "unload", path)

	if err := renameio.WriteFile(path, []byte(content), 0o644); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return &PermissionError{Op: "install", Path: path, Hint: launchdHint, Err: err}
		}
		return fmt.Errorf("writing plist: %w", err)
	}
	logger.Debug("wrote plist", "path", path)

	return b.load(ctx, name, true)
}

// load runs launchctl load, optionally with -w to clear the disabled flag.
func (b *LaunchdBackend) load(ctx context.Context, name string, persist bool) error {
	args := []string{"load"}
	if persist {
		args = append(args, "-w")
	}
	args = append(args, b.plistPath(name))

	_, stderr, err := b.run(ctx, b.LaunchctlPath, args...)
	if err != nil {
		// "already loaded" from a previous session is fine
		if strings.Contains(strings.ToLower(stderr), "already loaded") {
			return nil
		}
		return commandErr("load", b.ServiceID(name), stderr, launchdHint, err)
	}
	return nil
}

// unload removes the job from launchd. A job that is not loaded is not an
// error: that is simply the stopped state.
func (b *LaunchdBackend) unload(ctx context.Context, name string, persist bool) error {
	args := []string{"unload"}
	if persist {
		args = append(args, "-w")
	}
	args = append(args, b.plistPath(name))

	_, stderr, err := b.run(ctx, b.LaunchctlPath, args...)
	if err != nil {
		lower := strings.ToLower(stderr)
		if strings.Contains(lower, "not loaded") || strings.Contains(lower, "no such file") {
			return nil
		}
		return commandErr("unload", b.ServiceID(name), stderr, launchdHint, err)
	}
	return nil
}

// Start loads the job (RunAtLoad launches it) and kicks it explicitly in
// case the job was loaded but idle.
func (b *LaunchdBackend) Start(ctx context.Context, name string) error {
	if err := b.load(ctx, name, false); err != nil {
		return err
	}

	_, stderr, err := b.run(ctx, b.LaunchctlPath, "start", b.ServiceID(name))
	if err != nil {
		return commandErr("start", b.ServiceID(name), stderr, launchdHint, err)
	}
	return nil
}

// Stop unloads the job. Plain `launchctl stop` would fight KeepAlive,
// which immediately relaunches the process; unloading is the only way to
// keep it down.
func (b *LaunchdBackend) Stop(ctx context.Context, name string) error {
	return b.unload(ctx, name, false)
}

func (b *LaunchdBackend) Restart(ctx context.Context, name string) error {
	_ = b.Stop(ctx, name)
	return b.Start(ctx, name)
}

// Reload bounces the job through unload/load so launchd rereads the plist.
func (b *LaunchdBackend) Reload(ctx context.Context, name string) error {
	if err := b.unload(ctx, name, false); err != nil {
		return err
	}
	return b.load(ctx, name, false)
}

func (b *LaunchdBackend) Enable(ctx context.Context, name string) error {
	return b.load(ctx, name, true)
}

func (b *LaunchdBackend) Disable(ctx context.Context, name string) error {
	return b.unload(ctx, name, true)
}

// Status parses the full `launchctl list` output for the job's line and
// enriches a running job with resource usage from the process table,
// since launchctl itself reports only pid and exit status.
func (b *LaunchdBackend) Status(ctx context.Context, name string) ServiceStatus {
	label := b.ServiceID(name)

	out, stderr, err := b.run(ctx, b.LaunchctlPath, "list")
	if err != nil {
		return ServiceStatus{ID: label, State: StateUnknown, Err: strings.TrimSpace(stderr)}
	}

	st := b.parser.Parse(label, out)
	if st.State == StateActive && st.PID > 0 && b.stats != nil {
		st.MemoryBytes, st.CPUPercent, st.UptimeSeconds = b.stats(ctx, st.PID)
	}
	return st
}

func (b *LaunchdBackend) AllStatuses(ctx context.Context, names []string) []ServiceStatus {
	return fanOutStatuses(ctx, b, names, b.Concurrency)
}

// IsActive scans the listing for the label with a numeric pid, skipping
// the resource-usage enrichment a full Status performs.
func (b *LaunchdBackend) IsActive(ctx context.Context, name string) bool {
	out, _, err := b.run(ctx, b.LaunchctlPath, "list")
	if err != nil {
		return false
	}
	st := b.parser.Parse(b.ServiceID(name), out)
	return st.State == StateActive
}

// Remove unloads the job and deletes its plist and log file.
func (b *LaunchdBackend) Remove(ctx context.Context, name string) error {
	if err := b.unload(ctx, name, true); err != nil {
		return err
	}

	path := b.plistPath(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotInstalled
		}
		if errors.Is(err, os.ErrPermission) {
			return &PermissionError{Op: "remove", Path: path, Hint: launchdHint, Err: err}
		}
		return fmt.Errorf("removing plist: %w", err)
	}

	// Log file is best-effort cleanup
	_ = os.Remove(b.logPath(name))
	return nil
}

// Logs reads the service's flat log file. Snapshot mode returns the last
// opts.Lines lines; follow mode tails the file until ctx is cancelled.
func (b *LaunchdBackend) Logs(ctx context.Context, name string, opts LogOptions, w io.Writer) error {
	path := b.logPath(name)

	lines := opts.Lines
	if lines <= 0 {
		lines = 100
	}

	if !opts.Follow {
		return snapshotFile(path, lines, w)
	}
	return tailFile(ctx, path, lines, w)
}
