package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"fontbatch/pkg/batch"
	"fontbatch/pkg/renderer"
)

type Config struct {
	ConfigurationDir   string   `yaml:"configuration_dir"`
	DryRunOutputDir    string   `yaml:"dry_run_output_dir"`
	TempDirPrefix      string   `yaml:"temp_dir_prefix"`
	RendererCandidates []string `yaml:"renderer_candidates"`

	LogLevel    string `yaml:"log_level"`
	LogEncoding string `yaml:"log_encoding"`

	MetricsFile      string `yaml:"metrics_file"`
	FailureLogTarget string `yaml:"failure_log_target"`

	S3Region          string `yaml:"s3_region"`
	S3Endpoint        string `yaml:"s3_endpoint"`
	S3AccessKeyID     string `yaml:"-"`
	S3SecretAccessKey string `yaml:"-"`

	TraceEndpoint string  `yaml:"trace_endpoint"`
	TraceSampling float64 `yaml:"trace_sampling"`
}

// Default returns the built-in configuration. Paths are relative to the
// working directory.
func Default() *Config {
	return &Config{
		ConfigurationDir:   filepath.Join("resources", "configs"),
		DryRunOutputDir:    "font-images",
		TempDirPrefix:      "fonts-",
		RendererCandidates: renderer.DefaultCandidates(),
		LogLevel:           "info",
		LogEncoding:        "console",
		TraceSampling:      1.0,
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file at
// path (skipped when path is empty), then environment variables.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.ConfigurationDir = getEnv("FONTBATCH_CONFIGURATION_DIR", cfg.ConfigurationDir)
	cfg.DryRunOutputDir = getEnv("FONTBATCH_DRY_RUN_OUTPUT_DIR", cfg.DryRunOutputDir)
	cfg.TempDirPrefix = getEnv("FONTBATCH_TEMP_PREFIX", cfg.TempDirPrefix)
	cfg.RendererCandidates = getEnvAsList("FONTBATCH_RENDERER_CANDIDATES", cfg.RendererCandidates)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogEncoding = getEnv("LOG_ENCODING", cfg.LogEncoding)
	cfg.MetricsFile = getEnv("FONTBATCH_METRICS_FILE", cfg.MetricsFile)
	cfg.FailureLogTarget = getEnv("FONTBATCH_FAILURE_LOG_TARGET", cfg.FailureLogTarget)
	cfg.S3Region = getEnv("FONTBATCH_S3_REGION", cfg.S3Region)
	cfg.S3Endpoint = getEnv("FONTBATCH_S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKeyID = getEnv("AWS_ACCESS_KEY_ID", cfg.S3AccessKeyID)
	cfg.S3SecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", cfg.S3SecretAccessKey)
	cfg.TraceEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.TraceEndpoint)
	cfg.TraceSampling = getEnvAsFloat("FONTBATCH_TRACE_SAMPLING", cfg.TraceSampling)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late in a run.
func (c *Config) Validate() error {
	var errs []error
	if c.ConfigurationDir == "" {
		errs = append(errs, errors.New("configuration_dir must not be empty"))
	}
	if c.DryRunOutputDir == "" {
		errs = append(errs, errors.New("dry_run_output_dir must not be empty"))
	}
	if len(c.RendererCandidates) == 0 {
		errs = append(errs, errors.New("renderer_candidates must not be empty"))
	}
	if c.TraceSampling < 0 || c.TraceSampling > 1 {
		errs = append(errs, fmt.Errorf("trace_sampling must be within [0, 1], got %v", c.TraceSampling))
	}
	return errors.Join(errs...)
}

// Defaults returns the orchestrator defaults carried by c.
func (c *Config) Defaults() batch.Defaults {
	return batch.Defaults{
		ConfigurationDir: c.ConfigurationDir,
		DryRunOutputDir:  c.DryRunOutputDir,
		TempDirPrefix:    c.TempDirPrefix,
		Renderer:         renderer.SearchResolver{Candidates: c.RendererCandidates},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
