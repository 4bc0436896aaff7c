package utils

import (
	"context"

	"github.com/gin-gonic/gin"
)

const (
	SpanContextKey       = "span_context"
	RequestIDKey         = "request_id"
	LocationKey          = "weather_location"
	LocationDefaultedKey = "weather_location_defaulted"
)

// GetContextFromGinContext extracts the context with span from Gin context
func GetContextFromGinContext(c *gin.Context) context.Context {
	if spanCtx, exists := c.Get(SpanContextKey); exists {
		if ctx, ok := spanCtx.(context.Context); ok {
			return ctx
		}
	}
	return c.Request.Context()
}

// GetRequestIDFromGinContext extracts request ID from Gin context
func GetRequestIDFromGinContext(c *gin.Context) string {
	if requestID, exists := c.Get(RequestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// SetResolvedLocation records the location a weather request ended up asking
// for, so the access log and the server span can report it.
func SetResolvedLocation(c *gin.Context, location string, defaulted bool) {
	c.Set(LocationKey, location)
	c.Set(LocationDefaultedKey, defaulted)
}

// GetResolvedLocation reports ok=false for requests that never resolved one.
func GetResolvedLocation(c *gin.Context) (location string, defaulted bool, ok bool) {
	v, exists := c.Get(LocationKey)
	if !exists {
		return "", false, false
	}
	location, ok = v.(string)
	defaulted = c.GetBool(LocationDefaultedKey)
	return location, defaulted, ok
}
