package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"fontbatch/pkg/executor/runner"
	"fontbatch/pkg/metrics"
	"fontbatch/pkg/models"
	tracing "fontbatch/pkg/observability"
	"fontbatch/pkg/storage"
)

// Options carries the collaborators of an Orchestrator. Only Runner is
// needed for a real run; the rest fall back to quiet defaults.
type Options struct {
	Runner   runner.Runner
	Logger   *zap.Logger
	Metrics  *metrics.Recorder
	Tracer   trace.Tracer
	LogStore storage.LogStore // archives failed invocation output; nil disables
	Out      io.Writer        // dry-run commands and the final report; defaults to stdout
	RunID    string
}

// Orchestrator renders every configuration file of a batch, one at a time.
type Orchestrator struct {
	cfg      *RunConfiguration
	runner   runner.Runner
	log      *zap.Logger
	metrics  *metrics.Recorder
	tracer   trace.Tracer
	logStore storage.LogStore
	out      io.Writer
	runID    string
}

// Report is the outcome of a batch. The CLI only prints OutputDir.
type Report struct {
	RunID     string
	OutputDir string
	Results   []models.InvocationResult
}

// Failures returns the invocations that ran and failed.
func (r *Report) Failures() []models.InvocationResult {
	var failed []models.InvocationResult
	for _, res := range r.Results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

func NewOrchestrator(cfg *RunConfiguration, opts Options) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		runner:   opts.Runner,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		logStore: opts.LogStore,
		out:      opts.Out,
		runID:    opts.RunID,
	}
	if o.runner == nil {
		o.runner = runner.NewProcessRunner()
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewRecorder()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer("fontbatch")
	}
	if o.out == nil {
		o.out = os.Stdout
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}
	return o
}

// Run discovers the configuration files and invokes the renderer for each.
// A failed invocation is logged and the loop moves on; Run only returns an
// error when the configuration dir cannot be listed or ctx is done.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	log := o.log.With(zap.String("run_id", o.runID))

	ctx, span := o.tracer.Start(ctx, "batch", trace.WithAttributes(
		attribute.String("fontbatch.run_id", o.runID),
		attribute.String("fontbatch.configuration_dir", o.cfg.ConfigurationDir),
		attribute.String("fontbatch.output_dir", o.cfg.OutputDir),
		attribute.Bool("fontbatch.dry_run", o.cfg.DryRun),
	))
	defer span.End()

	log.Debug("Starting batch",
		zap.String("renderer", o.cfg.Renderer.Path),
		zap.String("configuration_dir", o.cfg.ConfigurationDir),
		zap.String("output_dir", o.cfg.OutputDir),
		zap.Bool("dry_run", o.cfg.DryRun),
		zap.String("trace_id", tracing.TraceID(ctx)),
	)

	files, err := Discover(o.cfg.ConfigurationDir)
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}
	tracing.SetAttributes(ctx, attribute.Int("fontbatch.configs", len(files)))

	common := CommonArgs(o.cfg)
	report := &Report{RunID: o.runID, OutputDir: o.cfg.OutputDir}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Results = append(report.Results, o.process(ctx, log, file, common))
	}

	o.metrics.RecordBatch(len(files), time.Since(start))
	fmt.Fprintf(o.out, "All images saved in %s\n", o.cfg.OutputDir)
	return report, nil
}

func (o *Orchestrator) process(ctx context.Context, log *zap.Logger, file models.ConfigurationFile, common []string) models.InvocationResult {
	outputPath := file.OutputPath(o.cfg.OutputDir)
	command := Command(o.cfg, file, common)
	log = log.With(zap.String("config", file.Path))

	log.Info("Processing configuration", zap.String("output", outputPath))

	result := models.InvocationResult{
		Config:     file,
		OutputPath: outputPath,
		Command:    command,
	}

	if o.cfg.DryRun {
		fmt.Fprintf(o.out, "Would execute:\n%s\n", shellquote.Join(command...))
		result.Status = models.InvocationSkipped
		return result
	}

	ctx, span := o.tracer.Start(ctx, "render", trace.WithAttributes(
		attribute.String("fontbatch.config", file.Path),
		attribute.String("fontbatch.output", outputPath),
	))
	defer span.End()

	res := o.runner.Run(ctx, command[0], command[1:])
	result.ExitCode = res.ExitCode
	result.Stdout = res.Stdout
	result.Stderr = res.Stderr
	result.Duration = res.Duration
	result.Err = res.Error
	tracing.SetAttributes(ctx, attribute.Int("fontbatch.exit_code", res.ExitCode))

	if res.Success() {
		result.Status = models.InvocationSuccess
		log.Debug("Rendered image", zap.String("output", outputPath), zap.Duration("duration", res.Duration))
	} else {
		result.Status = models.InvocationFailed
		if result.Err == nil {
			result.Err = fmt.Errorf("renderer exited with status %d", res.ExitCode)
		}
		tracing.SetError(ctx, result.Err)
		result.LogRef = o.archive(ctx, log, file, res)

		fields := []zap.Field{
			zap.Error(result.Err),
			zap.Int("exit_code", res.ExitCode),
			zap.String("stdout", res.Stdout),
			zap.String("stderr", res.Stderr),
		}
		if result.LogRef != "" {
			fields = append(fields, zap.String("log_ref", result.LogRef))
		}
		log.Error("Renderer failed", fields...)
	}

	o.metrics.RecordInvocation(string(result.Status), res.Duration)
	return result
}

// archive stores the output of a failed invocation. Archive failures are
// logged and otherwise ignored.
func (o *Orchestrator) archive(ctx context.Context, log *zap.Logger, file models.ConfigurationFile, res runner.Result) string {
	if o.logStore == nil {
		return ""
	}
	key := fmt.Sprintf("%s/%s.log", o.runID, file.Stem())
	ref, err := o.logStore.Store(ctx, key, storage.FormatLogs(res.Stdout, res.Stderr))
	if err != nil {
		log.Warn("Failed to archive renderer output", zap.Error(err))
		return ""
	}
	return ref
}
