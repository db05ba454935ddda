package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/pkg/logger"
	"github.com/vzahanych/weather-compare/pkg/telemetry"
	"go.uber.org/zap"
)

var (
	log        *logger.Logger
	tele       *telemetry.Telemetry
	configPath string
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Multi-provider weather comparison",
		Long:  `Fetches forecasts from Open-Meteo, Visual Crossing and WeatherAPI.com, normalizes them into one schema and serves or prints them side by side.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdownServices()
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(serverCmd())
	cmd.AddCommand(forecastCmd())
	cmd.AddCommand(geocodeCmd())

	return cmd
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		if log != nil {
			log.Info("Received shutdown signal", zap.String("signal", sig.String()))
		}
		cancel()
	}()

	return rootCmd().ExecuteContext(ctx)
}

func initializeServices(ctx context.Context) error {
	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Set config
	// Having config in atomic allows changing it during runtime
	config.SetConfig(cfg)

	// 3. Initialize logger
	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 4. Telemetry is optional; a failure only disables tracing
	tele, err = telemetry.New(ctx, cfg.Telemetry, cfg.Version)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
	}

	return nil
}

func shutdownServices() {
	if err := tele.Shutdown(context.Background()); err != nil && log != nil {
		log.Warn("Failed to shut down telemetry", zap.Error(err))
	}
	if log != nil {
		_ = log.Sync()
	}
}
