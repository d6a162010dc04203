package batch_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "fontbatch/pkg/batch"
	"fontbatch/pkg/models"
	"fontbatch/pkg/renderer"
)

func TestCommonArgs_FixedOrderAndOmission(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunConfiguration
		want []string
	}{
		{
			name: "none",
			cfg:  RunConfiguration{},
			want: nil,
		},
		{
			name: "all",
			cfg: RunConfiguration{
				InputPath:   "/data/sample.txt",
				BgColor:     "#ffffff",
				FgColor:     "#000000",
				ImageWidth:  "800",
				ImageHeight: "600",
			},
			want: []string{
				"--input-path", "/data/sample.txt",
				"--bg-color", "#ffffff",
				"--fg-color", "#000000",
				"--image-width", "800",
				"--image-height", "600",
			},
		},
		{
			name: "gaps",
			cfg: RunConfiguration{
				FgColor:     "red",
				ImageHeight: "120",
			},
			want: []string{"--fg-color", "red", "--image-height", "120"},
		},
		{
			name: "input only",
			cfg:  RunConfiguration{InputPath: "/data/sample.txt"},
			want: []string{"--input-path", "/data/sample.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, CommonArgs(&tt.cfg)); diff != "" {
				t.Errorf("CommonArgs() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCommand_Layout(t *testing.T) {
	cfg := &RunConfiguration{
		OutputDir: "/out",
		BgColor:   "black",
		Renderer:  renderer.Executable{Path: "/bin/font-feature-tester"},
	}
	file := models.ConfigurationFile{Path: "/configs/ligatures.toml"}

	got := Command(cfg, file, CommonArgs(cfg))

	want := []string{
		"/bin/font-feature-tester",
		"--configuration-path", "/configs/ligatures.toml",
		"--output-path", filepath.Join("/out", "ligatures.png"),
		"--bg-color", "black",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Command() mismatch (-want +got):\n%s", diff)
	}
}

func TestCommand_CommonArgsNotAliased(t *testing.T) {
	cfg := &RunConfiguration{OutputDir: "/out", FgColor: "blue"}
	common := CommonArgs(cfg)

	a := Command(cfg, models.ConfigurationFile{Path: "/c/a.toml"}, common)
	b := Command(cfg, models.ConfigurationFile{Path: "/c/b.toml"}, common)

	assert.Equal(t, []string{"--fg-color", "blue"}, common)
	assert.Equal(t, a[len(a)-2:], b[len(b)-2:])
	assert.NotEqual(t, a[2], b[2])
}

func TestOutputPath_UsesStem(t *testing.T) {
	for path, want := range map[string]string{
		"/configs/a.toml":            "/out/a.png",
		"/configs/b.toml":            "/out/b.png",
		"/configs/with.dots.toml":    "/out/with.dots.png",
		"/configs/nested/dir/c.toml": "/out/c.png",
	} {
		got := models.ConfigurationFile{Path: path}.OutputPath("/out")
		assert.Equal(t, filepath.FromSlash(want), got, path)
	}
}

func TestDiscover_MatchesTomlFilesOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.toml", "b.toml", "notes.txt", "c.toml.bak"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x = 1\n"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dir.toml"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "deep.toml"), nil, 0o644))

	files, err := Discover(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f.Path))
		names = append(names, filepath.Base(f.Path))
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.toml", "b.toml"}, names)
}

func TestDiscover_Empty(t *testing.T) {
	files, err := Discover(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "gone"))

	assert.Error(t, err)
}
