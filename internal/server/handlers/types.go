package handlers

import "github.com/vzahanych/climaai-weather-api/internal/weather"

// WeatherResponse and ErrorResponse are the two bodies /api/weather can answer with.
type (
	WeatherResponse = weather.Response
	ErrorResponse   = weather.ErrorResponse
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Predictor string `json:"predictor,omitempty"`
}
