package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/climaai-weather-api/internal/metrics"
	"go.uber.org/zap"
)

const unmatchedRoute = "unmatched"

type MetricsMiddleware struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewMetricsMiddleware(logger *zap.Logger, m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{
		logger:  logger,
		metrics: m,
	}
}

// Handler records request count, latency and in-flight gauge. Unknown paths share
// one route label so scanners cannot blow up label cardinality.
func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.metrics.HTTPActiveRequests.Inc()
		defer m.metrics.HTTPActiveRequests.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		duration := time.Since(start)
		m.metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), duration)

		m.logger.Debug("HTTP metrics recorded",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", duration))
	}
}
