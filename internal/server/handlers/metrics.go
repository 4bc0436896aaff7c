package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/vzahanych/climaai-weather-api/internal/metrics"
)

type MetricsHandler struct {
	metrics *metrics.Metrics
}

func NewMetricsHandler(m *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// ServeMetrics exposes the server's registry in Prometheus format.
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
