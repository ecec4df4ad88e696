package svcmgr

import "runtime"

// Select returns the ServiceManager for the host OS: systemd on Linux,
// launchd on macOS. Anything else fails closed with an
// *UnsupportedPlatformError before any backend method can be invoked.
func Select(scope Scope, prefix, labelDomain string) (ServiceManager, error) {
	return selectFor(runtime.GOOS, scope, prefix, labelDomain)
}

// selectFor is the testable dispatch on a GOOS value.
func selectFor(goos string, scope Scope, prefix, labelDomain string) (ServiceManager, error) {
	switch goos {
	case "linux":
		return NewSystemdBackend(scope, prefix), nil
	case "darwin":
		return NewLaunchdBackend(labelDomain), nil
	default:
		return nil, &UnsupportedPlatformError{OS: goos}
	}
}
