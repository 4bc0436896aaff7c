package service

import "context"

// Prediction is the raw record returned by a prediction capability. Field types are
// whatever the capability chose to send; callers coerce them.
type Prediction map[string]interface{}

// Predictor is the external weather prediction capability.
type Predictor interface {
	PredictWeather(ctx context.Context, location string) (Prediction, error)
	Name() string
}
