package desktop

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// commandRunner abstracts process invocation so tests can observe the exact
// command sequences without a Docker daemon.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, exitCode int, err error)
}

// osRunner invokes commands on the host.
type osRunner struct{}

func (osRunner) Run(ctx context.Context, name string, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	code := 0
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			// Non-zero exit is a result, not a transport failure.
			code = ee.ExitCode()
			err = nil
		}
	}
	return out.String(), errb.String(), code, err
}
