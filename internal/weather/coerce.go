package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/vzahanych/climaai-weather-api/internal/service"
)

// ErrMalformedPrediction wraps every coercion failure.
var ErrMalformedPrediction = errors.New("malformed prediction")

var errFailure = errors.New(genericFailureMessage)

const (
	fieldTemperature = "temperature"
	fieldCondition   = "condition"
	fieldHumidity    = "humidity"
	fieldWindSpeed   = "wind_speed"
)

// toResponse coerces all four prediction fields or none.
func toResponse(p service.Prediction, location string) (Response, error) {
	temperature, err := floatField(p, fieldTemperature)
	if err != nil {
		return Response{}, err
	}
	condition, err := stringField(p, fieldCondition)
	if err != nil {
		return Response{}, err
	}
	humidity, err := floatField(p, fieldHumidity)
	if err != nil {
		return Response{}, err
	}
	windSpeed, err := floatField(p, fieldWindSpeed)
	if err != nil {
		return Response{}, err
	}

	return Response{
		Temperature: temperature,
		Condition:   condition,
		Humidity:    humidity,
		WindSpeed:   windSpeed,
		Location:    location,
	}, nil
}

func lookup(p service.Prediction, key string) (interface{}, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedPrediction, key)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: field %q is null", ErrMalformedPrediction, key)
	}
	return v, nil
}

func floatField(p service.Prediction, key string) (float64, error) {
	v, err := lookup(p, key)
	if err != nil {
		return 0, err
	}
	if s, ok := v.(string); ok {
		v = strings.TrimSpace(s)
	}

	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrMalformedPrediction, key, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: field %q is not a finite number", ErrMalformedPrediction, key)
	}
	return f, nil
}

// stringField renders scalars the way the prediction model's own runtime
// prints them: floats always carry a fraction or exponent and booleans are
// capitalized.
func stringField(p service.Prediction, key string) (string, error) {
	v, err := lookup(p, key)
	if err != nil {
		return "", err
	}

	switch t := v.(type) {
	case bool:
		if t {
			return "True", nil
		}
		return "False", nil
	case float64:
		return formatFloat(t), nil
	case float32:
		return formatFloat(float64(t)), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		f, err := t.Float64()
		if err != nil {
			return "", fmt.Errorf("%w: field %q: %v", ErrMalformedPrediction, key, err)
		}
		return formatFloat(f), nil
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("%w: field %q: %v", ErrMalformedPrediction, key, err)
	}
	return s, nil
}

// formatFloat uses the shortest round-trip digits, switching to exponent form
// below 1e-4 and from 1e16 up. Integral values keep a ".0" suffix.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
