package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"fontbatch/pkg/models"
)

// ConfigPattern selects configuration files inside the configuration dir.
const ConfigPattern = "*.toml"

// CommonArgs returns the renderer flags shared by every invocation of a
// batch, in a fixed order. Empty values are omitted.
func CommonArgs(cfg *RunConfiguration) []string {
	var args []string
	for _, p := range []struct{ flag, value string }{
		{"--input-path", cfg.InputPath},
		{"--bg-color", cfg.BgColor},
		{"--fg-color", cfg.FgColor},
		{"--image-width", cfg.ImageWidth},
		{"--image-height", cfg.ImageHeight},
	} {
		if p.value != "" {
			args = append(args, p.flag, p.value)
		}
	}
	return args
}

// Command returns the full argv, renderer first, that renders file.
func Command(cfg *RunConfiguration, file models.ConfigurationFile, common []string) []string {
	argv := make([]string, 0, 5+len(common))
	argv = append(argv,
		cfg.Renderer.Path,
		"--configuration-path", file.Path,
		"--output-path", file.OutputPath(cfg.OutputDir),
	)
	return append(argv, common...)
}

// Discover lists the configuration files directly inside dir. Directories
// and subdirectory contents are ignored. Files come back in directory
// listing order.
func Discover(dir string) ([]models.ConfigurationFile, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to list configuration dir: %w", err)
	}

	var files []models.ConfigurationFile
	for _, entry := range entries {
		if ok, _ := filepath.Match(ConfigPattern, entry.Name()); !ok {
			continue
		}
		path := filepath.Join(abs, entry.Name())
		// Stat follows symlinks
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, models.ConfigurationFile{Path: path})
	}
	return files, nil
}
