package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/climaai-weather-api/internal/config"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNew_Disabled(t *testing.T) {
	tele, err := New(context.Background(), config.TelemetryConfig{Enabled: false}, "test")
	require.NoError(t, err)

	assert.False(t, tele.IsEnabled())
	assert.NotNil(t, tele.GetTracer())
	assert.NoError(t, tele.Shutdown(context.Background()))
}

func TestNilTelemetry(t *testing.T) {
	var tele *Telemetry

	assert.False(t, tele.IsEnabled())

	ctx, span := tele.GetTracer().Start(context.Background(), "op")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())

	// must not panic
	tele.RecordError(ctx, errors.New("boom"), map[string]interface{}{"location": "Paris"})
}

func TestNewWithProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tele := NewWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), "test")

	require.True(t, tele.IsEnabled())

	ctx, span := tele.GetTracer().Start(context.Background(), "forecast")
	tele.RecordError(ctx, errors.New("unknown location"), map[string]interface{}{"location": "Nowhere"})
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "unknown location", spans[0].Status().Description)
	assert.NoError(t, tele.Shutdown(context.Background()))
}
