package svcmgr

import (
	"strconv"
	"strings"
	"time"
)

// StatusParser reconstructs a ServiceStatus from the free-form text a
// native tool prints. Parsers are best-effort adapters: a failure on any
// individual field leaves that field absent, and an unclassifiable input
// degrades to StateUnknown rather than an error. Keeping them behind this
// interface isolates the text scraping so a structured native API could
// replace it without touching the batch executor or the data model.
type StatusParser interface {
	// Parse extracts a ServiceStatus for the identified service
	Parse(id string, output string) ServiceStatus
	// Name returns the parser name for debugging
	Name() string
}

// timestamp layouts seen in `systemctl status` Active: lines
var systemdSinceLayouts = []string{
	"Mon 2006-01-02 15:04:05 MST",
	"Mon 2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05 MST",
}

// SystemdStatusParser parses `systemctl status` human-readable output.
type SystemdStatusParser struct {
	// now is the clock used for uptime derivation, overridable in tests
	now func() time.Time
}

// NewSystemdStatusParser returns a parser using the wall clock.
func NewSystemdStatusParser() *SystemdStatusParser {
	return &SystemdStatusParser{now: time.Now}
}

func (p *SystemdStatusParser) Name() string {
	return "systemd"
}

// Parse scans the status text line by line. The Active: line yields the
// state and the start timestamp, Main PID: the process id, Memory: the
// resident size.
func (p *SystemdStatusParser) Parse(id string, output string) ServiceStatus {
	st := ServiceStatus{ID: id, State: StateUnknown}

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "Active:"):
			st.State = classifyActiveLine(line)
			if secs, ok := p.uptimeFromActiveLine(line); ok {
				st.UptimeSeconds = secs
			}
		case strings.HasPrefix(line, "Main PID:"):
			if pid, ok := firstInt(strings.TrimPrefix(line, "Main PID:")); ok {
				st.PID = pid
			}
		case strings.HasPrefix(line, "Memory:"):
			if bytes, ok := parseMemoryValue(strings.TrimSpace(strings.TrimPrefix(line, "Memory:"))); ok {
				st.MemoryBytes = bytes
			}
		}
	}

	return st
}

// classifyActiveLine maps the Active: line onto the six-state enum by
// substring match. "active (running)" must be tested before "inactive"
// (which contains "active"), and "deactivating" before "activating".
func classifyActiveLine(line string) State {
	switch {
	case strings.Contains(line, "active (running)"):
		return StateActive
	case strings.Contains(line, "inactive"):
		return StateInactive
	case strings.Contains(line, "failed"):
		return StateFailed
	case strings.Contains(line, "deactivating"):
		return StateDeactivating
	case strings.Contains(line, "activating"):
		return StateActivating
	default:
		return StateUnknown
	}
}

// uptimeFromActiveLine derives whole seconds since the "since" timestamp,
// e.g. "Active: active (running) since Mon 2024-01-01 00:00:00 UTC; 2h ago".
func (p *SystemdStatusParser) uptimeFromActiveLine(line string) (int64, bool) {
	idx := strings.Index(line, "since ")
	if idx < 0 {
		return 0, false
	}
	rest := line[idx+len("since "):]
	if end := strings.Index(rest, ";"); end >= 0 {
		rest = rest[:end]
	}
	rest = strings.TrimSpace(rest)

	for _, layout := range systemdSinceLayouts {
		since, err := time.Parse(layout, rest)
		if err != nil {
			continue
		}
		secs := int64(p.now().Sub(since).Seconds())
		if secs < 0 {
			secs = 0
		}
		return secs, true
	}
	return 0, false
}

// firstInt extracts the first decimal integer in s.
func firstInt(s string) (int, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			return n, err == nil
		}
	}
	if start >= 0 {
		n, err := strconv.Atoi(s[start:])
		return n, err == nil
	}
	return 0, false
}

// parseMemoryValue converts strings like "45.2M" or "1.1G" to bytes.
// An unrecognized unit letter passes the raw float through unscaled.
func parseMemoryValue(s string) (uint64, bool) {
	if s == "" {
		return 0, false
	}

	unit := s[len(s)-1]
	num := s
	if unit < '0' || unit > '9' {
		num = s[:len(s)-1]
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || value < 0 {
		return 0, false
	}

	switch unit {
	case 'K':
		value *= 1024
	case 'M':
		value *= 1024 * 1024
	case 'G':
		value *= 1024 * 1024 * 1024
	}

	return uint64(value), true
}
