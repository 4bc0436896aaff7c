package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vzahanych/climaai-weather-api/internal/config"
	"github.com/vzahanych/climaai-weather-api/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const OpenWeatherPredictorName = "openweather"

var ErrMissingAPIKey = errors.New("openweather predictor requires an API key")

// OpenWeatherPredictor serves predictions from the OpenWeatherMap current weather API.
type OpenWeatherPredictor struct {
	baseURL       string
	apiKey        string
	client        *http.Client
	retries       int
	retryInterval time.Duration
	logger        *zap.Logger
	tele          *telemetry.Telemetry
}

// Fields are pointers so that an absent field stays absent in the Prediction
// instead of turning into a zero value.
type openWeatherResponse struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Name string `json:"name"`
}

func NewOpenWeatherPredictorWithConfig(cfg config.PredictorConfig, logger *zap.Logger, tele *telemetry.Telemetry) (*OpenWeatherPredictor, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	return &OpenWeatherPredictor{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		client:        newHTTPClient(cfg.Timeout),
		retries:       cfg.Retries,
		retryInterval: defaultRetryInterval,
		logger:        logger,
		tele:          tele,
	}, nil
}

func (p *OpenWeatherPredictor) Name() string {
	return OpenWeatherPredictorName
}

func (p *OpenWeatherPredictor) PredictWeather(ctx context.Context, location string) (Prediction, error) {
	tracer := p.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "openweather.PredictWeather")
	defer span.End()

	span.SetAttributes(
		attribute.String("location", location),
		attribute.String("predictor", p.Name()),
	)

	p.logger.Debug("Fetching current weather from OpenWeatherMap",
		zap.String("location", location))

	var prediction Prediction
	attempts := 0
	err := withRetry(ctx, p.retries, p.retryInterval, func() error {
		attempts++
		result, err := p.fetchCurrent(ctx, location)
		if err != nil {
			p.logger.Debug("OpenWeatherMap attempt failed",
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

func (p *OpenWeatherPredictor) fetchCurrent(ctx context.Context, location string) (Prediction, error) {
	u, err := url.Parse(fmt.Sprintf("%s/weather", p.baseURL))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("invalid OpenWeatherMap URL: %w", err))
	}

	q := u.Query()
	q.Set("q", location)
	q.Set("units", "metric")
	q.Set("appid", p.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create OpenWeatherMap request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		// url.Error would leak the appid query parameter
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("OpenWeatherMap request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp, "OpenWeatherMap")
	}

	var apiResp openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to decode OpenWeatherMap response: %w", err))
	}

	return mapOpenWeatherResponse(apiResp), nil
}

func mapOpenWeatherResponse(r openWeatherResponse) Prediction {
	prediction := Prediction{}
	if r.Main.Temp != nil {
		prediction["temperature"] = *r.Main.Temp
	}
	if r.Main.Humidity != nil {
		prediction["humidity"] = *r.Main.Humidity
	}
	if r.Wind.Speed != nil {
		prediction["wind_speed"] = *r.Wind.Speed
	}
	if len(r.Weather) > 0 {
		prediction["condition"] = r.Weather[0].Main
	}
	return prediction
}
