package svcmgr

// State represents the lifecycle state of a managed service.
type State int

const (
	// StateUnknown is the safe default when status cannot be determined
	StateUnknown State = iota
	// StateActive indicates the service is running
	StateActive
	// StateInactive indicates the service is stopped
	StateInactive
	// StateFailed indicates the service terminated abnormally
	StateFailed
	// StateActivating indicates the service is starting up
	StateActivating
	// StateDeactivating indicates the service is shutting down
	StateDeactivating
)

// State string constants
const (
	stateUnknownStr      = "unknown"
	stateActiveStr       = "active"
	stateInactiveStr     = "inactive"
	stateFailedStr       = "failed"
	stateActivatingStr   = "activating"
	stateDeactivatingStr = "deactivating"
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateActive:
		return stateActiveStr
	case StateInactive:
		return stateInactiveStr
	case StateFailed:
		return stateFailedStr
	case StateActivating:
		return stateActivatingStr
	case StateDeactivating:
		return stateDeactivatingStr
	case StateUnknown:
		fallthrough
	default:
		return stateUnknownStr
	}
}

// RestartPolicy controls when the native manager restarts a service.
type RestartPolicy int

const (
	// RestartAlways restarts the service regardless of exit status
	RestartAlways RestartPolicy = iota
	// RestartOnFailure restarts only on a non-zero exit
	RestartOnFailure
	// RestartOnAbnormal restarts on signals and timeouts but not clean exits
	RestartOnAbnormal
	// RestartNever leaves the service down once it exits
	RestartNever
)

// String returns the string representation of a RestartPolicy
func (p RestartPolicy) String() string {
	switch p {
	case RestartOnFailure:
		return "on-failure"
	case RestartOnAbnormal:
		return "on-abnormal"
	case RestartNever:
		return "never"
	case RestartAlways:
		fallthrough
	default:
		return "always"
	}
}

// ParseRestartPolicy maps a config string to a RestartPolicy.
// The boolean result is false for unrecognized values.
func ParseRestartPolicy(s string) (RestartPolicy, bool) {
	switch s {
	case "always", "":
		return RestartAlways, true
	case "on-failure":
		return RestartOnFailure, true
	case "on-abnormal":
		return RestartOnAbnormal, true
	case "never":
		return RestartNever, true
	default:
		return RestartAlways, false
	}
}

// ResourceLimits holds optional resource caps for a service.
// Zero values mean "no limit" and are never rendered into native config.
type ResourceLimits struct {
	// MemoryMB is the memory ceiling in megabytes
	MemoryMB int64
	// CPUPercent is the CPU quota as a percentage of one core
	CPUPercent int
	// OpenFiles caps the number of open file descriptors
	OpenFiles int
	// Processes caps the number of processes/threads
	Processes int
}

// Descriptor is the normalized, immutable definition of one managed
// application. It is produced by the config loader and consumed read-only
// by backends and generators.
type Descriptor struct {
	// Name is the bare service name as it appears in the config file
	Name string
	// Directory is the absolute working directory for the service
	Directory string
	// Command is the full command line to execute
	Command string
	// Env holds environment variables passed to the service
	Env map[string]string
	// EnvFile is an optional path to an environment file
	EnvFile string
	// User and Group optionally set the run-as identity
	User  string
	Group string
	// Description is a human-readable summary used in native config
	Description string
	// Restart selects the native restart policy
	Restart RestartPolicy
	// RestartDelay is the delay between restarts in seconds
	RestartDelay int
	// After and Requires are native ordering/dependency hints
	After    []string
	Requires []string
	// Limits holds optional resource caps
	Limits *ResourceLimits
}

// ServiceStatus is a point-in-time snapshot of one service. It is computed
// fresh on every query and never cached. Optional fields are zero when the
// backend could not determine them.
type ServiceStatus struct {
	// ID is the backend-derived service identifier (unit name or label)
	ID string
	// State is one of the six enumerated states
	State State
	// PID is the main process id, 0 when not running
	PID int
	// MemoryBytes is resident memory, 0 when unavailable
	MemoryBytes uint64
	// CPUPercent is instantaneous CPU usage, 0 when unavailable
	CPUPercent float64
	// UptimeSeconds is whole seconds since the service started
	UptimeSeconds int64
	// Restarts counts automatic restarts when the backend reports them
	Restarts int
	// ExitCode is the last recorded exit code when the service is not running
	ExitCode int
	// Err holds diagnostic text when the status query itself degraded
	Err string
}

// Running reports whether the status describes a live process.
func (s ServiceStatus) Running() bool {
	return s.State == StateActive || s.State == StateActivating
}
