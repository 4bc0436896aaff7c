package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthHandler struct {
	logger    *zap.Logger
	startTime time.Time
	version   string
	predictor string
}

func NewHealthHandler(logger *zap.Logger, version, predictor string) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		startTime: time.Now(),
		version:   version,
		predictor: predictor,
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

// Readiness only reports that the process serves HTTP; the predictor is not probed
// because every request calls it anyway.
func (h *HealthHandler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Uptime:    time.Since(h.startTime).String(),
		Predictor: h.predictor,
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
		Predictor: h.predictor,
	})
}
