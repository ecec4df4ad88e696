package svcmgr

import (
	"bytes"
	"context"
	"os/exec"
)

// runnerFunc executes a native control command and returns its stdout and
// stderr. Backends hold one as a field so tests can substitute a fake
// without spawning processes.
type runnerFunc func(ctx context.Context, bin string, args ...string) (stdout, stderr string, err error)

// execRunner is the production runnerFunc backed by os/exec.
func execRunner(ctx context.Context, bin string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	return out.String(), errb.String(), err
}

// commandErr wraps a failed native invocation into the error kind the rest
// of the system classifies on: permission problems become *PermissionError
// with a remediation hint, everything else a *CommandError carrying the
// raw stderr.
func commandErr(op, service, stderr, hint string, err error) error {
	if isPermissionOutput(stderr) {
		return &PermissionError{Op: op, Path: service, Hint: hint, Err: err}
	}
	return &CommandError{Op: op, Service: service, Output: stderr, Err: err}
}
