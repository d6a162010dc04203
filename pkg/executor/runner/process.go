package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// ProcessRunner runs programs directly with os/exec, without a shell.
type ProcessRunner struct {
	// Dir is the working directory of the child; empty means the caller's.
	Dir string
}

func NewProcessRunner() *ProcessRunner {
	return &ProcessRunner{}
}

func (p *ProcessRunner) Run(ctx context.Context, name string, args []string) Result {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = p.Dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
			err = fmt.Errorf("%s exited with status %d: %w", name, exitCode, err)
		} else {
			// failed to start, or killed by the context
			exitCode = -1
			err = fmt.Errorf("failed to run %s: %w", name, err)
		}
	}

	return Result{
		ExitCode: exitCode,
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: duration,
		Error:    err,
	}
}
