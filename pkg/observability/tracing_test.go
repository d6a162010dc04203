package tracing_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	tracing "fontbatch/pkg/observability"
)

func TestInit_DisabledUsesNoopTracer(t *testing.T) {
	p, err := tracing.Init(context.Background(), tracing.DefaultConfig("fontbatch"))
	require.NoError(t, err)

	ctx, span := p.Tracer().Start(context.Background(), "batch")
	defer span.End()

	assert.Empty(t, tracing.TraceID(ctx))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestConfig_Enabled(t *testing.T) {
	cfg := tracing.DefaultConfig("fontbatch")
	assert.False(t, cfg.Enabled())

	cfg.Endpoint = "localhost:4318"
	assert.True(t, cfg.Enabled())
}

func TestSetError_MarksSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "invocation")
	tracing.SetAttributes(ctx, attribute.String("config", "a.toml"))
	tracing.SetError(ctx, errors.New("renderer exited with status 1"))
	assert.NotEmpty(t, tracing.TraceID(ctx))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
	assert.Contains(t, spans[0].Attributes(), attribute.String("config", "a.toml"))
}
