package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/climaai-weather-api/internal/server/utils"
	"github.com/vzahanych/climaai-weather-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingMiddleware_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			logger := zap.New(core)

			r := gin.New()
			r.Use(RequestIDMiddleware(logger))
			r.Use(LoggingMiddleware(logger, time.RFC3339, true))
			r.GET("/api/weather", func(c *gin.Context) { c.Status(tt.status) })

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/weather?location=Paris", nil))

			entries := logs.FilterMessage("HTTP request").All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)

			fields := entries[0].ContextMap()
			assert.Equal(t, "/api/weather?location=Paris", fields["path"])
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, rec.Header().Get(RequestIDHeader), fields["request_id"])
		})
	}
}

func TestValidRequestID(t *testing.T) {
	assert.True(t, validRequestID("0f8fad5b-d9cb-469f-a165-70867728950e"))
	assert.True(t, validRequestID("trace:abc/123"))
	assert.False(t, validRequestID("with space"))
	assert.False(t, validRequestID("line\nbreak"))
	assert.False(t, validRequestID(strings.Repeat("a", maxRequestIDLength+1)))
}

func TestLoggingMiddleware_ResolvedLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(LoggingMiddleware(zap.New(core), time.RFC3339, true))
	r.GET("/api/weather", func(c *gin.Context) {
		utils.SetResolvedLocation(c, "default", true)
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/weather", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 2)

	weatherFields := entries[0].ContextMap()
	assert.Equal(t, "default", weatherFields["location"])
	assert.Equal(t, true, weatherFields["location_defaulted"])

	assert.NotContains(t, entries[1].ContextMap(), "location")
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestTelemetryMiddleware_Span(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := tracetest.NewSpanRecorder()
	tele := telemetry.NewWithProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)), "test")

	r := gin.New()
	r.Use(RequestIDMiddleware(zap.NewNop()))
	r.Use(TelemetryMiddleware(zap.NewNop(), tele))
	r.GET("/api/weather", func(c *gin.Context) {
		utils.SetResolvedLocation(c, "Nowhere", false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown location"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/weather?location=Nowhere", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	weatherSpan := spans[0]
	assert.Equal(t, "GET /api/weather", weatherSpan.Name())
	assert.Equal(t, codes.Error, weatherSpan.Status().Code)
	attrs := spanAttributes(weatherSpan)
	assert.Equal(t, "Nowhere", attrs["weather.location"].AsString())
	assert.False(t, attrs["weather.location_defaulted"].AsBool())
	assert.Equal(t, "req-1", attrs["request.id"].AsString())
	assert.Equal(t, int64(500), attrs["http.status_code"].AsInt64())

	missingSpan := spans[1]
	assert.Equal(t, "GET unmatched", missingSpan.Name())
	assert.Equal(t, codes.Unset, missingSpan.Status().Code)
	assert.NotContains(t, spanAttributes(missingSpan), attribute.Key("weather.location"))
}
