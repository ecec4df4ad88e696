package svcmgr

import (
	"context"
	"io"
)

// Scope selects between system-wide and per-user service registration.
type Scope int

const (
	// ScopeSystem registers services with the system manager instance
	ScopeSystem Scope = iota
	// ScopeUser registers services with the calling user's manager instance
	ScopeUser
)

// String returns the string representation of a Scope
func (s Scope) String() string {
	if s == ScopeUser {
		return "user"
	}
	return "system"
}

// LogOptions controls how backend logs are fetched.
type LogOptions struct {
	// Follow streams new lines until the context is cancelled
	Follow bool
	// Lines bounds the initial snapshot, 0 means backend default
	Lines int
	// Since restricts output to entries after this timestamp expression
	// (passed through to the native tool, e.g. "2h" or an ISO date)
	Since string
}

// ServiceManager is the capability contract every native backend satisfies.
// Exactly two implementations exist: systemd (Linux) and launchd (macOS).
// Shared logic such as the batch executor depends only on this interface
// and never inspects the concrete type.
type ServiceManager interface {
	// Name returns the backend name ("systemd" or "launchd")
	Name() string

	// ServiceID derives the backend-native identifier for a bare service
	// name (unit name without suffix, or reverse-DNS label). The mapping
	// is stable and each backend owns its own convention.
	ServiceID(name string) string

	// Available reports whether the native control binary responds.
	// It is a precondition gate and never returns an error.
	Available(ctx context.Context) bool

	// Install idempotently writes or updates the native config artifact,
	// reloads the manager and leaves the service enabled for start.
	Install(ctx context.Context, name string, d Descriptor) error

	// Start, Stop and Restart invoke the native lifecycle verbs. They
	// fail with a *CommandError carrying raw diagnostics when the control
	// command exits non-zero.
	Start(ctx context.Context, name string) error
	Stop(ctx context.Context, name string) error
	Restart(ctx context.Context, name string) error

	// Reload asks the service to reload its configuration in place.
	Reload(ctx context.Context, name string) error

	// Enable and Disable control start-at-boot/login registration.
	Enable(ctx context.Context, name string) error
	Disable(ctx context.Context, name string) error

	// Status returns a fresh ServiceStatus. It never returns an error;
	// any parse or lookup failure collapses to StateUnknown.
	Status(ctx context.Context, name string) ServiceStatus

	// AllStatuses fetches statuses for several services. Fetches are
	// independent and may run concurrently; results preserve input order.
	AllStatuses(ctx context.Context, names []string) []ServiceStatus

	// IsActive is a fast liveness probe decoupled from full status parsing.
	IsActive(ctx context.Context, name string) bool

	// Remove stops the service if active, unloads/disables it (treating
	// "not loaded" as non-fatal), deletes the config artifact and reloads.
	Remove(ctx context.Context, name string) error

	// Logs writes native log output for the service to w. In follow mode
	// it blocks until ctx is cancelled.
	Logs(ctx context.Context, name string, opts LogOptions, w io.Writer) error

	// GenerateConfig renders the native artifact text without touching
	// disk. Deterministic: the same descriptor yields identical output.
	GenerateConfig(name string, d Descriptor) (string, error)
}
