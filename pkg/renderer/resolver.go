// Package renderer locates and validates the external image renderer.
//
// The orchestrator never looks for the renderer itself: it asks a Resolver
// for an Executable. SearchResolver walks a list of build-output candidates,
// PathResolver validates a path the user supplied, and tests can provide
// their own implementation.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrNotFound      = errors.New("could not find renderer binary, did you run `cargo build`?")
	ErrNotExecutable = errors.New("renderer is not an executable file")
)

// Executable is a renderer binary that existed and was executable when it
// was resolved.
type Executable struct {
	Path string // absolute
}

func (e Executable) String() string {
	return e.Path
}

// Resolver produces a validated renderer executable.
type Resolver interface {
	Resolve(ctx context.Context) (Executable, error)
}

// PathResolver validates an explicitly configured renderer path.
type PathResolver struct {
	Path string
}

func (r PathResolver) Resolve(ctx context.Context) (Executable, error) {
	return Validate(r.Path)
}

// SearchResolver returns the first candidate that exists. Candidates are
// ordered by preference, e.g. an optimized build before a debug build.
type SearchResolver struct {
	Candidates []string
}

// DefaultCandidates are the cargo build outputs of the font feature tester,
// relative to the working directory.
func DefaultCandidates() []string {
	return []string{
		filepath.Join("target", "release", "font-feature-tester"),
		filepath.Join("target", "debug", "font-feature-tester"),
	}
}

func (r SearchResolver) Resolve(ctx context.Context) (Executable, error) {
	for _, candidate := range r.Candidates {
		if err := ctx.Err(); err != nil {
			return Executable{}, err
		}
		if _, err := os.Stat(candidate); err == nil {
			// first existing candidate wins, even if it turns out not
			// to be executable
			return Validate(candidate)
		}
	}
	return Executable{}, ErrNotFound
}

// Validate checks that path is a regular file the current user may execute.
func Validate(path string) (Executable, error) {
	if path == "" {
		return Executable{}, ErrNotFound
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Executable{}, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return Executable{}, fmt.Errorf("%w: %s", ErrNotExecutable, abs)
	}
	if !isExecutable(abs, info) {
		return Executable{}, fmt.Errorf("%w: %s", ErrNotExecutable, abs)
	}
	return Executable{Path: abs}, nil
}
