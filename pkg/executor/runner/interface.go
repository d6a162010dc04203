package runner

import (
	"context"
	"time"
)

// Result captures the outcome of one external process run.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error // non-nil on non-zero exit or when the process could not start
}

// Success reports whether the process started and exited with status zero.
func (r Result) Success() bool {
	return r.Error == nil && r.ExitCode == 0
}

// Runner executes a single external program.
type Runner interface {
	// Run executes name with args and blocks until it exits.
	// Output is captured as text in the Result.
	Run(ctx context.Context, name string, args []string) Result
}
