package batch

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInputPath        = errors.New("--input-path must be a path to existing file")
	ErrConfigurationDirMissing = errors.New("configuration dir does not exist")
	ErrOutputDirCreate         = errors.New("could not create output dir")
)

// ConfigError is a parameter resolution failure. It aborts the run before
// any configuration file is processed.
type ConfigError struct {
	Op   string // parameter being resolved, e.g. "input-path"
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is, or wraps, a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
