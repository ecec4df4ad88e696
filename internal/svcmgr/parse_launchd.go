package svcmgr

import (
	"strconv"
	"strings"
)

// LaunchdStatusParser parses the full `launchctl list` listing. Each data
// line is whitespace-separated "pid status label"; a "-" pid means the job
// is loaded but has no running process.
type LaunchdStatusParser struct{}

func (p *LaunchdStatusParser) Name() string {
	return "launchd"
}

// Parse locates the line for the given label and classifies it. A label
// absent from the listing is reported as inactive, not unknown: launchd
// drops stopped jobs from the listing entirely, so absence is a normal
// stopped-state signal on this backend.
func (p *LaunchdStatusParser) Parse(label string, output string) ServiceStatus {
	st := ServiceStatus{ID: label, State: StateInactive}

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || fields[2] != label {
			continue
		}

		if fields[0] != "-" {
			pid, err := strconv.Atoi(fields[0])
			if err != nil {
				st.State = StateUnknown
				return st
			}
			st.State = StateActive
			st.PID = pid
			return st
		}

		// Not running: the second column is the last exit status
		code, err := strconv.Atoi(fields[1])
		if err != nil {
			st.State = StateUnknown
			return st
		}
		if code == 0 {
			st.State = StateInactive
		} else {
			st.State = StateFailed
			st.ExitCode = code
		}
		return st
	}

	return st
}
