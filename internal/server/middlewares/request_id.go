package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vzahanych/climaai-weather-api/internal/server/utils"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = utils.RequestIDKey

	maxRequestIDLength = 128
)

// RequestIDMiddleware reuses the caller's X-Request-ID when it looks sane and
// otherwise mints a UUID. The id is echoed back in the response header.
func RequestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID != "" && !validRequestID(requestID) {
			logger.Debug("Replacing malformed request id", zap.Int("length", len(requestID)))
			requestID = ""
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header(RequestIDHeader, requestID)

		c.Set(RequestIDKey, requestID)

		c.Next()
	}
}

func validRequestID(id string) bool {
	if len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
