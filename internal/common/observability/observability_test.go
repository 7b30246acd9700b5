package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestNilObservability_IsSafe(t *testing.T) {
	var o *Observability
	ctx := context.Background()

	o.RecordJobProcessed(ctx, "advisor-analyze-demand", "completed")
	o.RecordJobDuration(ctx, "advisor-analyze-demand", time.Second, "completed")
	o.RecordTurn(ctx, "solution")
	o.Shutdown()
}

func TestEnableTracing_DisabledIsNoop(t *testing.T) {
	o := &Observability{}
	require.NoError(t, o.EnableTracing(TracingOptions{Enabled: false}))
	assert.Nil(t, o.tracerShutdown)
}

func TestEnableTracing_WithoutExporter(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	o := New("advisor-test", zap.NewNop())
	require.NoError(t, o.EnableTracing(TracingOptions{Enabled: true, SampleRatio: 1}))
	assert.NotNil(t, o.tracerShutdown)
	o.Shutdown()
}

func TestStartSpan_RecordsErrors(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	_, span := StartSpan(context.Background(), "ark.chat")
	EndSpan(span, errors.New("upstream 500"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ark.chat", spans[0].Name())
	assert.Equal(t, "upstream 500", spans[0].Status().Description)
}
