package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vzahanych/climaai-weather-api/internal/config"
	"github.com/vzahanych/climaai-weather-api/pkg/logger"
	"github.com/vzahanych/climaai-weather-api/pkg/telemetry"
	"go.uber.org/zap"
)

var (
	configPath string
	log        *zap.Logger
	tele       *telemetry.Telemetry
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "climaai",
		Short: "ClimaAI weather prediction API",
		Long:  `An HTTP service that answers GET /api/weather?location=... with a prediction from an external weather model.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(serverCmd())

	return cmd
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rootCmd().ExecuteContext(ctx)
}

func initializeServices(cmd *cobra.Command) error {
	// 1. Load config: defaults < config file < CLIMAAI_* env < flags
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return err
	}

	// 2. Set config
	config.SetConfig(cfg)

	// 3. Initialize logger
	log, err = logger.New(cfg.Logging, cfg.Server.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return err
	}

	tele, err = telemetry.New(cmd.Context(), cfg.Telemetry, cfg.Version)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
		tele = &telemetry.Telemetry{}
	}

	return nil
}
