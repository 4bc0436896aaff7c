package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/climaai-weather-api/internal/config"
	"github.com/vzahanych/climaai-weather-api/internal/server"
	"github.com/vzahanych/climaai-weather-api/internal/service"
	"go.uber.org/zap"
)

func serverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the weather API server",
		Long:  `Start the HTTP server exposing GET /api/weather, health checks and Prometheus metrics.`,
		RunE:  runServer,
	}

	cmd.Flags().IntP("port", "p", 5000, "port to listen on")
	cmd.Flags().Bool("debug", false, "enable debug mode with verbose error reporting")

	return cmd
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	defer func() { _ = log.Sync() }()

	log.Info("Starting weather API server",
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port),
		zap.String("predictor", cfg.Weather.Predictor.Type))

	predictor, err := service.New(cfg.Weather.Predictor, log, tele)
	if err != nil {
		log.Error("Failed to create predictor", zap.Error(err))
		return err
	}

	srv := server.NewServer(cfg, predictor, log, tele)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
		return err
	case <-cmd.Context().Done():
		log.Info("Shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		if err := tele.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error during telemetry shutdown", zap.Error(err))
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
