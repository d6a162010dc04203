package models

import (
	"path/filepath"
	"strings"
	"time"
)

// ImageExtension is appended to a configuration stem to name its output image.
const ImageExtension = ".png"

// ConfigurationFile is a discovered renderer configuration.
type ConfigurationFile struct {
	Path string `json:"path"` // absolute
}

// Stem returns the base name of the configuration without its extension.
func (c ConfigurationFile) Stem() string {
	base := filepath.Base(c.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OutputPath returns the image path the renderer is asked to write for c.
// Two configurations with the same stem map to the same image.
func (c ConfigurationFile) OutputPath(outputDir string) string {
	return filepath.Join(outputDir, c.Stem()+ImageExtension)
}

// InvocationStatus is the outcome of a single renderer invocation.
type InvocationStatus string

const (
	InvocationSuccess InvocationStatus = "SUCCESS"
	InvocationFailed  InvocationStatus = "FAILED"
	InvocationSkipped InvocationStatus = "SKIPPED" // dry run
)

// InvocationResult is created when the renderer returns and consumed right away
// for logging and metrics.
type InvocationResult struct {
	Config     ConfigurationFile `json:"config"`
	OutputPath string            `json:"output_path"`
	Command    []string          `json:"command"`
	Status     InvocationStatus  `json:"status"`
	ExitCode   int               `json:"exit_code"`
	Stdout     string            `json:"stdout"`
	Stderr     string            `json:"stderr"`
	Duration   time.Duration     `json:"duration"`
	Err        error             `json:"-"`

	// LogRef points to the archived stdout/stderr of a failed invocation, if any.
	LogRef string `json:"log_ref,omitempty"`
}

// Failed reports whether the invocation ran and did not succeed.
func (r InvocationResult) Failed() bool {
	return r.Status == InvocationFailed
}
