package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/climaai-weather-api/internal/server/utils"
	"github.com/vzahanych/climaai-weather-api/internal/weather"
	"github.com/vzahanych/climaai-weather-api/pkg/logger"
	"go.uber.org/zap"
)

const LocationParam = "location"

// Forecaster is the core the handler delegates to.
type Forecaster interface {
	Forecast(ctx context.Context, q weather.Query) weather.Result
}

type WeatherHandler struct {
	forecaster      Forecaster
	defaultLocation string
	timeout         time.Duration
	logger          *zap.Logger
}

// NewWeatherHandler builds the handler. A positive timeout bounds each forecast,
// so the error body is written before the connection's write deadline.
func NewWeatherHandler(f Forecaster, defaultLocation string, timeout time.Duration, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		forecaster:      f,
		defaultLocation: defaultLocation,
		timeout:         timeout,
		logger:          logger,
	}
}

// GetWeather answers GET /api/weather?location=<string>. Every failure is a 500
// with {"error": "..."}; there is no 4xx path.
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	requestID := utils.GetRequestIDFromGinContext(c)

	reqLogger := h.logger.With(zap.String("request_id", requestID))
	ctx = logger.WithContext(ctx, reqLogger)

	value, present := c.GetQuery(LocationParam)
	query := weather.NewQuery(value, present, h.defaultLocation)
	utils.SetResolvedLocation(c, query.Location, !present)

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	reqLogger.Info("Processing weather request",
		zap.String("location", query.Location),
		zap.Bool("defaulted", !present))

	result := h.forecaster.Forecast(ctx, query)
	if !result.OK() {
		reqLogger.Error("Failed to get weather prediction",
			zap.String("location", query.Location),
			zap.Error(result.Err()))
		_ = c.Error(result.Err())
		c.JSON(http.StatusInternalServerError, result.ErrorResponse())
		return
	}

	reqLogger.Info("Weather request completed successfully",
		zap.String("location", query.Location))

	c.JSON(http.StatusOK, result.Response())
}
