package middlewares

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/climaai-weather-api/internal/server/utils"
	"github.com/vzahanych/climaai-weather-api/internal/weather"
	"go.uber.org/zap"
)

// LoggingMiddleware writes one access log line per request, levelled by status:
// 5xx at error, 4xx at warn, everything else at info.
func LoggingMiddleware(logger *zap.Logger, timeFormat string, utc bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		target := c.Request.URL.RequestURI()

		c.Next()

		finished := time.Now()
		if utc {
			finished = finished.UTC()
		}
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("time", finished.Format(timeFormat)),
			zap.String("method", c.Request.Method),
			zap.String("path", target),
			zap.Int("status", status),
			zap.Duration("latency", finished.Sub(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if requestID := utils.GetRequestIDFromGinContext(c); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if location, defaulted, ok := utils.GetResolvedLocation(c); ok {
			fields = append(fields,
				zap.String("location", location),
				zap.Bool("location_defaulted", defaulted))
		}
		if userAgent := c.Request.UserAgent(); userAgent != "" {
			fields = append(fields, zap.String("user_agent", userAgent))
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, zap.String("error", errs.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// RecoveryMiddleware turns a panic into a 500 JSON error body. With exposePanic the
// panic value is sent to the caller, otherwise a generic message.
func RecoveryMiddleware(logger *zap.Logger, stack bool, exposePanic bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.Any("recovered", recovered),
		}

		if requestID := utils.GetRequestIDFromGinContext(c); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}

		if stack {
			fields = append(fields, zap.Stack("stack"))
		}

		logger.Error("HTTP panic recovered", fields...)

		message := "internal server error"
		if exposePanic {
			message = fmt.Sprintf("%v", recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, weather.ErrorResponse{Error: message})
	})
}
