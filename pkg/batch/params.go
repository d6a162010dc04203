package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fontbatch/pkg/renderer"
)

// Params are the user supplied overrides. Empty strings mean "not supplied".
type Params struct {
	InputPath        string
	OutputDir        string
	BgColor          string
	FgColor          string
	ImageWidth       string
	ImageHeight      string
	ConfigurationDir string
	RendererPath     string
	DryRun           bool
}

// Defaults fill in what Params leave out.
type Defaults struct {
	ConfigurationDir string
	DryRunOutputDir  string // used, not created, in dry-run mode
	TempDirPrefix    string // prefix of the temporary output directory

	// Renderer locates the renderer when Params.RendererPath is empty.
	Renderer renderer.Resolver
}

// RunConfiguration is the validated set of parameters for one batch run.
// All paths are absolute.
type RunConfiguration struct {
	InputPath        string
	OutputDir        string
	BgColor          string
	FgColor          string
	ImageWidth       string
	ImageHeight      string
	ConfigurationDir string
	Renderer         renderer.Executable
	DryRun           bool
}

// Resolve validates p against the filesystem and fills in defaults.
//
// Every check runs before the output directory is touched, so a
// *ConfigError never leaves a new directory behind. In dry-run mode the
// output directory is never created.
func Resolve(ctx context.Context, p Params, d Defaults) (*RunConfiguration, error) {
	cfg := &RunConfiguration{
		BgColor:     p.BgColor,
		FgColor:     p.FgColor,
		ImageWidth:  p.ImageWidth,
		ImageHeight: p.ImageHeight,
		DryRun:      p.DryRun,
	}

	if p.InputPath != "" {
		info, err := os.Stat(p.InputPath)
		if err != nil || !info.Mode().IsRegular() {
			return nil, &ConfigError{Op: "input-path", Path: p.InputPath, Err: ErrInvalidInputPath}
		}
		abs, err := filepath.Abs(p.InputPath)
		if err != nil {
			return nil, &ConfigError{Op: "input-path", Path: p.InputPath, Err: err}
		}
		cfg.InputPath = abs
	}

	configDir := p.ConfigurationDir
	if configDir == "" {
		configDir = d.ConfigurationDir
	}
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		return nil, &ConfigError{Op: "configuration-dir", Path: configDir, Err: ErrConfigurationDirMissing}
	}
	abs, err := filepath.Abs(configDir)
	if err != nil {
		return nil, &ConfigError{Op: "configuration-dir", Path: configDir, Err: err}
	}
	cfg.ConfigurationDir = abs

	var resolver renderer.Resolver
	switch {
	case p.RendererPath != "":
		resolver = renderer.PathResolver{Path: p.RendererPath}
	case d.Renderer != nil:
		resolver = d.Renderer
	default:
		resolver = renderer.SearchResolver{Candidates: renderer.DefaultCandidates()}
	}
	exe, err := resolver.Resolve(ctx)
	if err != nil {
		return nil, &ConfigError{Op: "renderer", Path: p.RendererPath, Err: err}
	}
	cfg.Renderer = exe

	outputDir, err := resolveOutputDir(p, d)
	if err != nil {
		return nil, err
	}
	cfg.OutputDir = outputDir

	return cfg, nil
}

func resolveOutputDir(p Params, d Defaults) (string, error) {
	dir := p.OutputDir
	switch {
	case dir == "" && p.DryRun:
		dir = d.DryRunOutputDir
		if dir == "" {
			dir = "font-images"
		}
	case dir == "":
		tmp, err := os.MkdirTemp("", d.TempDirPrefix)
		if err != nil {
			return "", &ConfigError{Op: "output-dir", Err: fmt.Errorf("%w: %w", ErrOutputDirCreate, err)}
		}
		dir = tmp
	case !p.DryRun:
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", &ConfigError{Op: "output-dir", Path: dir, Err: fmt.Errorf("%w: %w", ErrOutputDirCreate, err)}
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &ConfigError{Op: "output-dir", Path: dir, Err: err}
	}
	return abs, nil
}
