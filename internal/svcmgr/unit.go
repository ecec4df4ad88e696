package svcmgr

import (
	"fmt"
	"sort"
	"strings"
)

// systemd restart policy names
const (
	restartAlwaysUnit     = "always"
	restartOnFailureUnit  = "on-failure"
	restartOnAbnormalUnit = "on-abnormal"
	restartNeverUnit      = "no"
)

// unitRestart maps a RestartPolicy to the systemd Restart= value
func unitRestart(p RestartPolicy) string {
	switch p {
	case RestartOnFailure:
		return restartOnFailureUnit
	case RestartOnAbnormal:
		return restartOnAbnormalUnit
	case RestartNever:
		return restartNeverUnit
	default:
		return restartAlwaysUnit
	}
}

// GenerateUnit renders a systemd unit file for the descriptor. The output
// is deterministic: environment entries are emitted in sorted key order so
// the same descriptor always produces byte-identical text, which makes
// dry-run diffing and idempotent installs possible.
func GenerateUnit(d Descriptor, scope Scope) string {
	var unit strings.Builder

	unit.WriteString("[Unit]\n")
	desc := d.Description
	if desc == "" {
		desc = fmt.Sprintf("%s service", d.Name)
	}
	fmt.Fprintf(&unit, "Description=%s\n", desc)
	if len(d.After) > 0 {
		fmt.Fprintf(&unit, "After=%s\n", strings.Join(d.After, " "))
	} else {
		unit.WriteString("After=network.target\n")
	}
	if len(d.Requires) > 0 {
		fmt.Fprintf(&unit, "Requires=%s\n", strings.Join(d.Requires, " "))
	}
	unit.WriteString("\n")

	unit.WriteString("[Service]\n")
	unit.WriteString("Type=simple\n")
	fmt.Fprintf(&unit, "WorkingDirectory=%s\n", d.Directory)
	fmt.Fprintf(&unit, "ExecStart=%s\n", d.Command)
	fmt.Fprintf(&unit, "Restart=%s\n", unitRestart(d.Restart))
	if d.RestartDelay > 0 {
		fmt.Fprintf(&unit, "RestartSec=%d\n", d.RestartDelay)
	}

	if d.User != "" {
		fmt.Fprintf(&unit, "User=%s\n", d.User)
	}
	if d.Group != "" {
		fmt.Fprintf(&unit, "Group=%s\n", d.Group)
	}

	if d.EnvFile != "" {
		fmt.Fprintf(&unit, "EnvironmentFile=%s\n", d.EnvFile)
	}
	for _, key := range sortedKeys(d.Env) {
		escaped := strings.ReplaceAll(d.Env[key], `"`, `\"`)
		fmt.Fprintf(&unit, "Environment=\"%s=%s\"\n", key, escaped)
	}

	if l := d.Limits; l != nil {
		if l.MemoryMB > 0 {
			fmt.Fprintf(&unit, "MemoryMax=%dM\n", l.MemoryMB)
		}
		if l.CPUPercent > 0 {
			fmt.Fprintf(&unit, "CPUQuota=%d%%\n", l.CPUPercent)
		}
		if l.OpenFiles > 0 {
			fmt.Fprintf(&unit, "LimitNOFILE=%d\n", l.OpenFiles)
		}
		if l.Processes > 0 {
			fmt.Fprintf(&unit, "LimitNPROC=%d\n", l.Processes)
		}
	}

	unit.WriteString("StandardOutput=journal\n")
	unit.WriteString("StandardError=journal\n")

	unit.WriteString("\n")
	unit.WriteString("[Install]\n")
	if scope == ScopeUser {
		unit.WriteString("WantedBy=default.target\n")
	} else {
		unit.WriteString("WantedBy=multi-user.target\n")
	}

	return unit.String()
}

// sortedKeys returns map keys in sorted order for deterministic output
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
