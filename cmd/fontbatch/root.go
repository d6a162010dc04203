package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "fontbatch/configs"
	"fontbatch/pkg/batch"
	"fontbatch/pkg/executor/runner"
	"fontbatch/pkg/logger"
	"fontbatch/pkg/metrics"
	tracing "fontbatch/pkg/observability"
	"fontbatch/pkg/storage"
)

const (
	appName        = "fontbatch"
	appDescription = "Execute the font feature tester for all configuration files in a directory"
)

type rootFlags struct {
	params batch.Params

	configFile       string
	logLevel         string
	logFormat        string
	metricsFile      string
	failureLogTarget string
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:           appName,
		Short:         appDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.params.InputPath, "input-path", "i", "",
		"Path to file whose content will be written on image. Passed to the renderer as --input-path")
	flags.StringVarP(&f.params.OutputDir, "output-dir", "o", "",
		"Directory where images will be written. A new temporary directory is created if not provided")
	flags.StringVar(&f.params.BgColor, "bg-color", "", "Image background color. Passed verbatim to the renderer")
	flags.StringVar(&f.params.FgColor, "fg-color", "", "Image text color. Passed verbatim to the renderer")
	flags.StringVar(&f.params.ImageWidth, "image-width", "", "Image width. Passed verbatim to the renderer")
	flags.StringVar(&f.params.ImageHeight, "image-height", "", "Image height. Passed verbatim to the renderer")
	flags.StringVar(&f.params.ConfigurationDir, "configuration-dir", "",
		"Directory with TOML configuration files (default resources/configs)")
	flags.StringVar(&f.params.RendererPath, "rust-binary", "",
		"Path to the renderer executable. Searches inside target/ by default")
	flags.BoolVar(&f.params.DryRun, "dry-run", false,
		"Don't do anything, print the commands that would be executed")

	flags.StringVar(&f.configFile, "config", "", "YAML file with fontbatch defaults")
	flags.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "log-format", "", "Log encoding: console or json")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the batch")
	flags.StringVar(&f.failureLogTarget, "failure-log-target", "",
		"Archive output of failed renders to a directory or s3://bucket/prefix")

	return cmd
}

func run(cmd *cobra.Command, f rootFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(f.configFile)
	if err != nil {
		return err
	}
	override(&cfg.LogLevel, f.logLevel)
	override(&cfg.LogEncoding, f.logFormat)
	override(&cfg.MetricsFile, f.metricsFile)
	override(&cfg.FailureLogTarget, f.failureLogTarget)

	logCfg := logger.DefaultConfig(appName)
	logCfg.Level = cfg.LogLevel
	logCfg.Encoding = cfg.LogEncoding
	log, err := logger.Init(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	traceCfg := tracing.DefaultConfig(appName)
	traceCfg.Endpoint = cfg.TraceEndpoint
	traceCfg.SamplingRate = cfg.TraceSampling
	tp, err := tracing.Init(ctx, traceCfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	runCfg, err := batch.Resolve(ctx, f.params, cfg.Defaults())
	if err != nil {
		return err
	}

	var logStore storage.LogStore
	if cfg.FailureLogTarget != "" && !runCfg.DryRun {
		logStore, err = storage.New(ctx, cfg.FailureLogTarget, storage.S3Config{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return err
		}
	}

	recorder := metrics.NewRecorder()
	orchestrator := batch.NewOrchestrator(runCfg, batch.Options{
		Runner:   runner.NewProcessRunner(),
		Logger:   log,
		Metrics:  recorder,
		Tracer:   tp.Tracer(),
		LogStore: logStore,
		Out:      cmd.OutOrStdout(),
		RunID:    uuid.NewString(),
	})
	if _, err := orchestrator.Run(ctx); err != nil {
		return err
	}

	if cfg.MetricsFile != "" && !runCfg.DryRun {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("Failed to write metrics", zap.Error(err))
		}
	}
	return nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
