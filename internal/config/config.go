package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	return configValue.Load().(*Config)
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port  int    `mapstructure:"port" validate:"min=1,max=65535"`
	Host  string `mapstructure:"host"`
	Debug bool   `mapstructure:"debug"`
	// Timeouts are in seconds.
	ReadTimeout     int `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    int `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     int `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout" validate:"min=0"`
}

type WeatherConfig struct {
	DefaultLocation string          `mapstructure:"default_location"`
	Predictor       PredictorConfig `mapstructure:"predictor"`
}

// PredictorConfig selects and configures the external prediction capability.
type PredictorConfig struct {
	Type    string `mapstructure:"type" validate:"oneof=model openweather"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	APIKey  string `mapstructure:"api_key"`
	Timeout int    `mapstructure:"timeout" validate:"min=0"`
	Retries int    `mapstructure:"retries" validate:"min=0,max=10"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:            5000,
			Host:            "0.0.0.0",
			Debug:           false,
			ReadTimeout:     30,
			WriteTimeout:    30,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Weather: WeatherConfig{
			DefaultLocation: "default",
			Predictor: PredictorConfig{
				Type:    "model",
				BaseURL: "http://localhost:8000",
				Timeout: 10,
				Retries: 2,
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "tempo:4317",
			ServiceName: "climaai-weather-api",
		},
	}
}
