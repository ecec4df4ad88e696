package svcmgr

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/renameio/v2"

	"bunman/internal/logger"
)

// Default systemd paths and limits
const (
	// DefaultSystemUnitDir is where system-scope units are written
	DefaultSystemUnitDir = "/etc/systemd/system"

	// DefaultStatusConcurrency bounds the status fan-out
	DefaultStatusConcurrency = 8

	sudoHint = "re-run with sudo, or install into the user scope with --user"
)

// SystemdBackend manages services through systemctl and journalctl on
// Linux. It owns the unit naming convention (prefix-name.service) and the
// unit directory for its scope; nothing outside this type knows either.
type SystemdBackend struct {
	// Scope selects the system or user manager instance
	Scope Scope
	// UnitDir is the directory unit files are written to
	UnitDir string
	// Prefix is prepended to service names to form unit names
	Prefix string
	// SystemctlPath is the systemctl binary
	SystemctlPath string
	// JournalctlPath is the journalctl binary
	JournalctlPath string
	// Concurrency bounds the AllStatuses fan-out
	Concurrency int

	parser *SystemdStatusParser
	run    runnerFunc
}

// NewSystemdBackend creates a backend for the given scope with defaults.
func NewSystemdBackend(scope Scope, prefix string) *SystemdBackend {
	unitDir := DefaultSystemUnitDir
	if scope == ScopeUser {
		home, err := os.UserHomeDir()
		if err == nil {
			unitDir = filepath.Join(home, ".config", "systemd", "user")
		}
	}

	return &SystemdBackend{
		Scope:          scope,
		UnitDir:        unitDir,
		Prefix:         prefix,
		SystemctlPath:  "systemctl",
		JournalctlPath: "journalctl",
		Concurrency:    DefaultStatusConcurrency,
		parser:         NewSystemdStatusParser(),
		run:            execRunner,
	}
}

func (b *SystemdBackend) Name() string {
	return "systemd"
}

// ServiceID returns the unit name without the .service suffix.
func (b *SystemdBackend) ServiceID(name string) string {
	if b.Prefix == "" {
		return name
	}
	return b.Prefix + "-" + name
}

func (b *SystemdBackend) unitName(name string) string {
	return b.ServiceID(name) + ".service"
}

func (b *SystemdBackend) unitPath(name string) string {
	return filepath.Join(b.UnitDir, b.unitName(name))
}

// ctl runs systemctl with the scope flag applied.
func (b *SystemdBackend) ctl(ctx context.Context, args ...string) (string, string, error) {
	if b.Scope == ScopeUser {
		args = append([]string{"--user"}, args...)
	}
	return b.run(ctx, b.SystemctlPath, args...)
}

// Available reports whether systemctl responds at all.
func (b *SystemdBackend) Available(ctx context.Context) bool {
	_, _, err := b.ctl(ctx, "--version")
	return err == nil
}

// GenerateConfig renders the unit file text without touching disk.
func (b *SystemdBackend) GenerateConfig(_ string, d Descriptor) (string, error) {
	if d.Command == "" {
		return "", &ValidationError{Service: d.Name, Field: "command", Reason: "must not be empty"}
	}
	return GenerateUnit(d, b.Scope), nil
}

// Install writes the unit file atomically, reloads the daemon and enables
// the unit. Repeated calls converge: an unchanged descriptor rewrites an
// identical file and the reload/enable are no-ops to systemd.
func (b *SystemdBackend) Install(ctx context.Context, name string, d Descriptor) error {
	content, err := b.GenerateConfig(name, d)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(b.UnitDir, 0o755); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return &PermissionError{Op: "install", Path: b.UnitDir, Hint: sudoHint, Err: err}
		}
		return fmt.Errorf("creating unit dir: %w", err)
	}

	path := b.unitPath(name)
	if err := renameio.WriteFile(path, []byte(content), 0o644); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return &PermissionError{Op: "install", Path: path, Hint: sudoHint, Err: err}
		}
		return fmt.Errorf("writing unit file: %w", err)
	}
	logger.Debug("wrote unit file", "path", path)

	if err := b.daemonReload(ctx); err != nil {
		return err
	}
	return b.Enable(ctx, name)
}

func (b *SystemdBackend) daemonReload(ctx context.Context) error {
	_, stderr, err := b.ctl(ctx, "daemon-reload")
	if err != nil {
		return commandErr("daemon-reload", "", stderr, sudoHint, err)
	}
	return nil
}

// verb runs a single lifecycle verb against the unit.
func (b *SystemdBackend) verb(ctx context.Context, op, name string) error {
	unit := b.unitName(name)
	_, stderr, err := b.ctl(ctx, op, unit)
	if err != nil {
		return commandErr(op, unit, stderr, sudoHint, err)
	}
	return nil
}

func (b *SystemdBackend) Start(ctx context.Context, name string) error {
	return b.verb(ctx, "start", name)
}

func (b *SystemdBackend) Stop(ctx context.Context, name string) error {
	return b.verb(ctx, "stop", name)
}

func (b *SystemdBackend) Restart(ctx context.Context, name string) error {
	return b.verb(ctx, "restart", name)
}

func (b *SystemdBackend) Reload(ctx context.Context, name string) error {
	return b.verb(ctx, "reload", name)
}

func (b *SystemdBackend) Enable(ctx context.Context, name string) error {
	return b.verb(ctx, "enable", name)
}

func (b *SystemdBackend) Disable(ctx context.Context, name string) error {
	return b.verb(ctx, "disable", name)
}

// Status queries `systemctl status` and parses the text. systemctl exits
// non-zero for inactive and failed units, so the exit code is ignored and
// only an empty output degrades to unknown.
func (b *SystemdBackend) Status(ctx context.Context, name string) ServiceStatus {
	unit := b.unitName(name)
	out, stderr, err := b.ctl(ctx, "status", unit, "--no-pager", "-l")
	if out == "" {
		st := ServiceStatus{ID: b.ServiceID(name), State: StateUnknown}
		if err != nil {
			st.Err = strings.TrimSpace(stderr)
		}
		return st
	}

	st := b.parser.Parse(b.ServiceID(name), out)
	return st
}

// AllStatuses fans the per-service fetches out across a bounded set of
// goroutines. Fetches are read-only and independent; the result slice
// preserves input order.
func (b *SystemdBackend) AllStatuses(ctx context.Context, names []string) []ServiceStatus {
	return fanOutStatuses(ctx, b, names, b.Concurrency)
}

// IsActive is a fast probe via `systemctl is-active`, which prints a
// single word and exits non-zero for anything but active. Exit code 3
// means inactive, so any error is simply "not active".
func (b *SystemdBackend) IsActive(ctx context.Context, name string) bool {
	out, _, err := b.ctl(ctx, "is-active", b.unitName(name))
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) == "active"
}

// Remove stops and disables the unit, deletes the unit file and reloads.
// A unit that is already stopped or not enabled is not an error.
func (b *SystemdBackend) Remove(ctx context.Context, name string) error {
	if b.IsActive(ctx, name) {
		if err := b.Stop(ctx, name); err != nil {
			return err
		}
	}

	// Disabling an unknown unit just warns; ignore it.
	_ = b.Disable(ctx, name)

	path := b.unitPath(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotInstalled
		}
		if errors.Is(err, os.ErrPermission) {
			return &PermissionError{Op: "remove", Path: path, Hint: sudoHint, Err: err}
		}
		return fmt.Errorf("removing unit file: %w", err)
	}
	logger.Debug("removed unit file", "path", path)

	return b.daemonReload(ctx)
}

// Logs shells out to journalctl. Follow mode streams line by line until
// the context is cancelled, which kills the child process.
func (b *SystemdBackend) Logs(ctx context.Context, name string, opts LogOptions, w io.Writer) error {
	unit := b.unitName(name)

	args := []string{}
	if b.Scope == ScopeUser {
		args = append(args, "--user-unit", unit)
	} else {
		args = append(args, "-u", unit)
	}
	lines := opts.Lines
	if lines <= 0 {
		lines = 100
	}
	args = append(args, "-n", strconv.Itoa(lines), "--no-pager")
	if opts.Since != "" {
		args = append(args, "--since", opts.Since)
	}

	if !opts.Follow {
		out, stderr, err := b.run(ctx, b.JournalctlPath, args...)
		if err != nil {
			return commandErr("logs", unit, stderr, sudoHint, err)
		}
		_, err = io.WriteString(w, out)
		return err
	}

	args = append(args, "-f")
	cmd := exec.CommandContext(ctx, b.JournalctlPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating journalctl pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting journalctl: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(w, scanner.Text()); err != nil {
			break
		}
	}
	_ = cmd.Wait()

	if ctx.Err() != nil {
		return nil // cancelled follow is a clean exit
	}
	return scanner.Err()
}

// fanOutStatuses runs Status for each name concurrently with a semaphore
// bound, preserving input order in the result slice.
func fanOutStatuses(ctx context.Context, m ServiceManager, names []string, concurrency int) []ServiceStatus {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]ServiceStatus, len(names))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = ServiceStatus{ID: m.ServiceID(name), State: StateUnknown, Err: ctx.Err().Error()}
				return
			}

			results[i] = m.Status(ctx, name)
		}(i, name)
	}

	wg.Wait()
	return results
}
