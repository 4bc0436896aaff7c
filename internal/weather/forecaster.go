package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/vzahanych/climaai-weather-api/internal/service"
	"github.com/vzahanych/climaai-weather-api/pkg/logger"
	"github.com/vzahanych/climaai-weather-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// MetricsRecorder receives one observation per prediction.
type MetricsRecorder interface {
	ObservePrediction(predictor string, success bool, elapsed time.Duration)
}

// Forecaster turns a Query into a Result by calling the predictor once and
// normalizing its output. It keeps no state between calls.
type Forecaster struct {
	predictor service.Predictor
	logger    *zap.Logger
	tele      *telemetry.Telemetry
	metrics   MetricsRecorder
}

func NewForecaster(predictor service.Predictor, logger *zap.Logger, tele *telemetry.Telemetry) *Forecaster {
	return &Forecaster{
		predictor: predictor,
		logger:    logger,
		tele:      tele,
	}
}

// SetMetricsRecorder sets the metrics recorder for the forecaster
func (f *Forecaster) SetMetricsRecorder(metrics MetricsRecorder) {
	f.metrics = metrics
}

func (f *Forecaster) Forecast(ctx context.Context, q Query) Result {
	tracer := f.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weather.Forecast")
	defer span.End()

	span.SetAttributes(
		attribute.String("location", q.Location),
		attribute.String("predictor", f.predictor.Name()),
	)

	reqLogger := logger.FromContext(ctx, f.logger)

	start := time.Now()
	result := f.forecast(ctx, q)
	elapsed := time.Since(start)

	if f.metrics != nil {
		f.metrics.ObservePrediction(f.predictor.Name(), result.OK(), elapsed)
	}

	if !result.OK() {
		span.SetAttributes(attribute.Bool("success", false))
		f.tele.RecordError(ctx, result.Err(), map[string]interface{}{"location": q.Location})
		reqLogger.Warn("Weather prediction failed",
			zap.String("location", q.Location),
			zap.Duration("elapsed", elapsed),
			zap.Error(result.Err()))
		return result
	}

	span.SetAttributes(attribute.Bool("success", true))
	reqLogger.Debug("Weather prediction served",
		zap.String("location", q.Location),
		zap.Duration("elapsed", elapsed))

	return result
}

func (f *Forecaster) forecast(ctx context.Context, q Query) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Failure(fmt.Errorf("%v", r))
		}
	}()

	prediction, err := f.predictor.PredictWeather(ctx, q.Location)
	if err != nil {
		return Failure(err)
	}

	resp, err := toResponse(prediction, q.Location)
	if err != nil {
		return Failure(err)
	}

	return Success(resp)
}
