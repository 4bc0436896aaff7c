package service

import (
	"fmt"

	"github.com/vzahanych/climaai-weather-api/internal/config"
	"github.com/vzahanych/climaai-weather-api/pkg/telemetry"
	"go.uber.org/zap"
)

// New builds the predictor selected by cfg.Type.
func New(cfg config.PredictorConfig, logger *zap.Logger, tele *telemetry.Telemetry) (Predictor, error) {
	switch cfg.Type {
	case ModelPredictorName:
		return NewModelPredictorWithConfig(cfg, logger, tele), nil
	case OpenWeatherPredictorName:
		p, err := NewOpenWeatherPredictorWithConfig(cfg, logger, tele)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown predictor type %q", cfg.Type)
	}
}
