package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vzahanych/climaai-weather-api/internal/config"
	"github.com/vzahanych/climaai-weather-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const ModelPredictorName = "model"

// ModelPredictor asks an external ML model service for a prediction:
// POST <base_url>/predict {"location": "..."} → {"temperature": ..., ...}.
type ModelPredictor struct {
	endpoint      string
	client        *http.Client
	retries       int
	retryInterval time.Duration
	logger        *zap.Logger
	tele          *telemetry.Telemetry
}

type modelRequest struct {
	Location string `json:"location"`
}

func NewModelPredictorWithConfig(cfg config.PredictorConfig, logger *zap.Logger, tele *telemetry.Telemetry) *ModelPredictor {
	return &ModelPredictor{
		endpoint:      strings.TrimRight(cfg.BaseURL, "/") + "/predict",
		client:        newHTTPClient(cfg.Timeout),
		retries:       cfg.Retries,
		retryInterval: defaultRetryInterval,
		logger:        logger,
		tele:          tele,
	}
}

func (p *ModelPredictor) Name() string {
	return ModelPredictorName
}

func (p *ModelPredictor) PredictWeather(ctx context.Context, location string) (Prediction, error) {
	tracer := p.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "model.PredictWeather")
	defer span.End()

	span.SetAttributes(
		attribute.String("location", location),
		attribute.String("predictor", p.Name()),
	)

	var prediction Prediction
	attempts := 0
	err := withRetry(ctx, p.retries, p.retryInterval, func() error {
		attempts++
		result, err := p.predictOnce(ctx, location)
		if err != nil {
			p.logger.Debug("Model prediction attempt failed",
				zap.String("location", location),
				zap.Int("attempt", attempts),
				zap.Error(err))
			return err
		}
		prediction = result
		return nil
	})

	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		span.SetAttributes(
			attribute.Bool("success", false),
			attribute.String("error", err.Error()),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("success", true))
	return prediction, nil
}

func (p *ModelPredictor) predictOnce(ctx context.Context, location string) (Prediction, error) {
	body, err := json.Marshal(modelRequest{Location: location})
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to marshal model request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create model request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp, "model service")
	}

	// Numbers stay json.Number so integer and float literals remain distinct.
	var prediction Prediction
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&prediction); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode model response: %w", err))
	}
	if prediction == nil {
		return nil, backoff.Permanent(errors.New("model service returned an empty prediction"))
	}

	return prediction, nil
}
