package logger

import (
	"fmt"

	"github.com/vzahanych/climaai-weather-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger from the logging config. Debug mode switches to the
// development preset (console encoder, debug level, stack traces on warnings).
func New(cfg config.LoggingConfig, debug bool) (*zap.Logger, error) {
	var zcfg zap.Config
	if debug {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)

		if cfg.Format == "console" {
			zcfg.Encoding = "console"
		}
	}

	if cfg.OutputPath != "" {
		zcfg.OutputPaths = []string{cfg.OutputPath}
	}

	return zcfg.Build()
}
