package classify

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// Runner executes an external probe and returns what it wrote.
// The error is an *exec.ExitError when the tool ran but exited non-zero.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs probes as child processes.
type ExecRunner struct {
	// Timeout bounds a single probe. Zero means no limit.
	Timeout time.Duration

	// For testing: override command construction
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// NewExecRunner creates a Runner backed by os/exec.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{
		Timeout:     timeout,
		execCommand: exec.CommandContext,
	}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	newCmd := r.execCommand
	if newCmd == nil {
		newCmd = exec.CommandContext
	}

	var stdout, stderr bytes.Buffer
	cmd := newCmd(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
