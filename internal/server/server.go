package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/climaai-weather-api/internal/config"
	"github.com/vzahanych/climaai-weather-api/internal/metrics"
	"github.com/vzahanych/climaai-weather-api/internal/server/handlers"
	"github.com/vzahanych/climaai-weather-api/internal/server/middlewares"
	"github.com/vzahanych/climaai-weather-api/internal/service"
	"github.com/vzahanych/climaai-weather-api/internal/weather"
	"github.com/vzahanych/climaai-weather-api/pkg/telemetry"
	"go.uber.org/zap"
)

const (
	WeatherRoute = "/api/weather"

	maxForecastHeadroom = 5 * time.Second
)

type Server struct {
	cfg        *config.Config
	engine     *gin.Engine
	server     *http.Server
	forecaster *weather.Forecaster
	metrics    *metrics.Metrics
	predictor  string
	logger     *zap.Logger
}

func NewServer(cfg *config.Config, predictor service.Predictor, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	m := metrics.New()

	forecaster := weather.NewForecaster(predictor, logger, tele)
	forecaster.SetMetricsRecorder(m)

	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	engine.Use(middlewares.RequestIDMiddleware(logger))
	engine.Use(middlewares.LoggingMiddleware(logger, time.RFC3339, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(middlewares.NewMetricsMiddleware(logger, m).Handler())
	// Inside tracing and metrics so a recovered panic is still counted as a 500.
	engine.Use(middlewares.RecoveryMiddleware(logger, true, cfg.Server.Debug))
	engine.Use(middlewares.CORSMiddleware())

	s := &Server{
		cfg:        cfg,
		engine:     engine,
		forecaster: forecaster,
		metrics:    m,
		predictor:  predictor.Name(),
		logger:     logger,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Business endpoints
	writeTimeout := time.Duration(s.cfg.Server.WriteTimeout) * time.Second
	weatherHandler := handlers.NewWeatherHandler(s.forecaster, s.cfg.Weather.DefaultLocation, forecastTimeout(writeTimeout), s.logger)
	s.engine.GET(WeatherRoute, weatherHandler.GetWeather)

	// Health endpoints (Kubernetes friendly)
	health := handlers.NewHealthHandler(s.logger, s.cfg.Version, s.predictor)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", handlers.NewMetricsHandler(s.metrics).ServeMetrics)
}

// forecastTimeout leaves headroom under the write deadline for the error body.
// Zero means the server has no write deadline and forecasts are unbounded.
func forecastTimeout(writeTimeout time.Duration) time.Duration {
	if writeTimeout <= 0 {
		return 0
	}
	return writeTimeout - min(writeTimeout/4, maxForecastHeadroom)
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start blocks until the server stops; a clean Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("Starting server",
		zap.String("addr", s.server.Addr),
		zap.String("predictor", s.predictor),
		zap.Bool("debug", s.cfg.Server.Debug))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
