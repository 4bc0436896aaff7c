package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/climaai-weather-api/internal/config"
	"github.com/vzahanych/climaai-weather-api/internal/server/handlers"
	"github.com/vzahanych/climaai-weather-api/internal/service"
	"github.com/vzahanych/climaai-weather-api/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

type stubPredictor struct {
	prediction service.Prediction
	err        error
}

func (s *stubPredictor) Name() string { return "stub" }

func (s *stubPredictor) PredictWeather(ctx context.Context, location string) (service.Prediction, error) {
	return s.prediction, s.err
}

func newTestServer(t *testing.T, p service.Predictor, mutate ...func(*config.Config)) *Server {
	t.Helper()
	cfg := config.NewDefaultConfig()
	for _, m := range mutate {
		m(cfg)
	}
	srv := NewServer(cfg, p, zaptest.NewLogger(t), &telemetry.Telemetry{})
	gin.SetMode(gin.TestMode)
	return srv
}

func okPredictor() *stubPredictor {
	return &stubPredictor{prediction: service.Prediction{
		"temperature": 18.5,
		"condition":   "Cloudy",
		"humidity":    60.0,
		"wind_speed":  12.3,
	}}
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestWeatherRoute(t *testing.T) {
	srv := newTestServer(t, okPredictor())

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/weather?location=Paris", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"temperature":18.5,"condition":"Cloudy","humidity":60.0,"wind_speed":12.3,"location":"Paris"}`,
		rec.Body.String())
}

func TestWeatherRoute_ConfiguredDefaultLocation(t *testing.T) {
	srv := newTestServer(t, okPredictor(), func(c *config.Config) {
		c.Weather.DefaultLocation = "Lisbon"
	})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/weather", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"location":"Lisbon"`)
}

func TestWeatherRoute_Failure(t *testing.T) {
	srv := newTestServer(t, &stubPredictor{err: errors.New("unknown location")})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/weather?location=Nowhere", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"unknown location"}`, rec.Body.String())
}

func TestCORS_AnyOrigin(t *testing.T) {
	srv := newTestServer(t, okPredictor())

	req := httptest.NewRequest(http.MethodGet, "/api/weather?location=Paris", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	rec := serve(srv, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	srv := newTestServer(t, okPredictor())

	req := httptest.NewRequest(http.MethodOptions, "/api/weather", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := serve(srv, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "GET")
}

func TestRequestID(t *testing.T) {
	srv := newTestServer(t, okPredictor())

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/weather", nil))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/api/weather", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = serve(srv, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/weather", nil)
	req.Header.Set("X-Request-ID", "has spaces")
	rec = serve(srv, req)
	assert.NotEqual(t, "has spaces", rec.Header().Get("X-Request-ID"))
}

func TestHealthRoutes(t *testing.T) {
	srv := newTestServer(t, okPredictor())

	for path, status := range map[string]string{
		"/health":       "ok",
		"/health/live":  "alive",
		"/health/ready": "ready",
	} {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body handlers.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, status, body.Status, path)
		assert.NotEmpty(t, body.Uptime, path)
	}
}

func TestMetricsRoute(t *testing.T) {
	srv := newTestServer(t, &stubPredictor{err: errors.New("unknown location")})

	serve(srv, httptest.NewRequest(http.MethodGet, "/api/weather?location=Nowhere", nil))
	serve(srv, httptest.NewRequest(http.MethodGet, "/no/such/path", nil))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `weather_predictions_total{outcome="failure",predictor="stub"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/api/weather",status="500"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",route="unmatched",status="404"} 1`)
}

func TestPanicRecovery(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		wantMsg string
	}{
		{"release hides panic value", false, "internal server error"},
		{"debug exposes panic value", true, "handler blew up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, okPredictor(), func(c *config.Config) {
				c.Server.Debug = tt.debug
			})
			srv.engine.GET("/boom", func(c *gin.Context) { panic("handler blew up") })

			rec := serve(srv, httptest.NewRequest(http.MethodGet, "/boom", nil))

			require.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantMsg+`"}`, rec.Body.String())
		})
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	srv := newTestServer(t, okPredictor())
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestPanicCountedAsServerError(t *testing.T) {
	srv := newTestServer(t, okPredictor())
	srv.engine.GET("/boom", func(c *gin.Context) { panic("handler blew up") })

	serve(srv, httptest.NewRequest(http.MethodGet, "/boom", nil))

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/boom",status="500"} 1`)
}

func TestForecastTimeout(t *testing.T) {
	assert.Equal(t, time.Duration(0), forecastTimeout(0))
	assert.Equal(t, 1500*time.Millisecond, forecastTimeout(2*time.Second))
	assert.Equal(t, 25*time.Second, forecastTimeout(30*time.Second))
	assert.Equal(t, 115*time.Second, forecastTimeout(120*time.Second))
}

func TestWeatherRoute_HangingUpstreamStillAnswersJSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so net/http watches for client disconnect and cancels r.Context().
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer upstream.Close()

	cfg := config.NewDefaultConfig()
	cfg.Server.WriteTimeout = 2
	cfg.Weather.Predictor.BaseURL = upstream.URL
	cfg.Weather.Predictor.Timeout = 10
	cfg.Weather.Predictor.Retries = 2

	logger := zaptest.NewLogger(t)
	predictor, err := service.New(cfg.Weather.Predictor, logger, &telemetry.Telemetry{})
	require.NoError(t, err)
	srv := NewServer(cfg, predictor, logger, &telemetry.Telemetry{})

	// Serve through the configured http.Server so its write deadline applies.
	ts := httptest.NewUnstartedServer(nil)
	ts.Config = srv.server
	ts.Start()
	defer ts.Close()

	start := time.Now()
	resp, err := http.Get(ts.URL + "/api/weather?location=Paris")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body handlers.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Error)
}
