package svcmgr

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrNotInstalled indicates no native config artifact exists for the service
	ErrNotInstalled = errors.New("svcmgr: service not installed")

	// ErrManagerUnavailable indicates the native control binary did not respond
	ErrManagerUnavailable = errors.New("svcmgr: service manager unavailable")
)

// CommandError represents a native control command that exited non-zero.
// It carries the operation, the service identifier, and the raw stderr text.
type CommandError struct {
	// Op is the lifecycle verb that failed (start, stop, install, ...)
	Op string
	// Service is the backend-derived service identifier
	Service string
	// Output is the raw diagnostic text from the native tool
	Output string
	// Err is the underlying exec error
	Err error
}

// Error returns a formatted error message
func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out != "" {
		return fmt.Sprintf("svcmgr %s %q: %v: %s", e.Op, e.Service, e.Err, out)
	}
	return fmt.Sprintf("svcmgr %s %q: %v", e.Op, e.Service, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *CommandError) Unwrap() error {
	return e.Err
}

// PermissionError indicates a native operation needs elevated privilege.
type PermissionError struct {
	// Op is the operation that was denied
	Op string
	// Path is the file or unit involved, if any
	Path string
	// Hint is a one-line remediation suggestion shown to the user
	Hint string
	// Err is the underlying error
	Err error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("svcmgr %s %q: permission denied", e.Op, e.Path)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates a requested service name is absent from the
// descriptor set. It carries the valid names for user guidance.
type NotFoundError struct {
	// Name is the service that was requested
	Name string
	// Valid is the list of known service names
	Valid []string
}

func (e *NotFoundError) Error() string {
	if len(e.Valid) == 0 {
		return fmt.Sprintf("svcmgr: unknown service %q (no services configured)", e.Name)
	}
	return fmt.Sprintf("svcmgr: unknown service %q (valid: %s)", e.Name, strings.Join(e.Valid, ", "))
}

// ValidationError indicates a malformed descriptor, surfaced before any
// backend call is made.
type ValidationError struct {
	// Service is the service whose descriptor is invalid
	Service string
	// Field is the offending descriptor field
	Field string
	// Reason explains what is wrong
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("svcmgr: invalid config for %q: %s: %s", e.Service, e.Field, e.Reason)
}

// UnsupportedPlatformError is fatal and raised before backend selection.
type UnsupportedPlatformError struct {
	// OS is the unsupported GOOS value
	OS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("svcmgr: unsupported platform %q (supported: linux, darwin)", e.OS)
}

// isPermissionOutput reports whether native tool output looks like a
// privilege problem. systemctl and launchctl both phrase this a few ways.
func isPermissionOutput(out string) bool {
	lower := strings.ToLower(out)
	return strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "access denied") ||
		strings.Contains(lower, "operation not permitted") ||
		strings.Contains(lower, "authentication is required") ||
		strings.Contains(lower, "interactive authentication required")
}
