package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-compare/internal/aggregator"
	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/counter"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/scheduler"
	"github.com/vzahanych/weather-compare/internal/server"
	"github.com/vzahanych/weather-compare/internal/weather"
	"go.uber.org/zap"
)

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the weather HTTP server",
		Long:  `Start the HTTP server with the normalized weather API, the key-hiding provider proxies, the visit counter and health endpoints.`,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	ctx := cmd.Context()

	log.Info("Starting weather server",
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Int("server_port", cfg.Server.Port),
		zap.Strings("enabled_providers", cfg.Weather.EnabledServices()))

	agg, err := aggregator.NewFromConfig(cfg.Weather, log.Logger, tele)
	if err != nil {
		return err
	}

	opts := provider.OptionsFromConfig(cfg.Weather, tele)

	visits, err := counter.New(ctx, cfg.Counter, log.Logger)
	if err != nil {
		return err
	}
	defer visits.Close()

	deps := server.Dependencies{
		Aggregator: agg,
		Geocoder:   provider.NewGeocoder(cfg.Weather.Geocoding, opts),
		Counter:    visits,
		Proxies:    proxyFetchers(cfg.Weather, opts),
	}

	if cfg.Probe.Enabled {
		probe := scheduler.NewProbe(agg,
			weather.Coordinates{Lat: cfg.Probe.Lat, Lon: cfg.Probe.Lon, Name: "probe"},
			time.Duration(cfg.Probe.Minutes)*time.Minute,
			time.Duration(cfg.Weather.Timeout)*time.Second,
			log.Logger)
		if err := probe.Start(); err != nil {
			return err
		}
		defer probe.Stop()
		deps.Readiness = probe
	}

	srv := server.NewServer(cfg, deps, log.Logger, tele)

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
	case <-ctx.Done():
		log.Info("Shutting down server")

		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}

// proxyFetchers builds the proxied providers from their service settings.
// They are proxied whether or not they take part in /weather.
func proxyFetchers(cfg config.WeatherConfig, opts provider.Options) map[string]provider.RawFetcher {
	fetchers := make(map[string]provider.RawFetcher)
	if svc, ok := cfg.Services[config.ProviderVisualCrossing]; ok {
		fetchers[config.ProviderVisualCrossing] = provider.NewVisualCrossing(svc, opts)
	}
	if svc, ok := cfg.Services[config.ProviderWeatherAPI]; ok {
		fetchers[config.ProviderWeatherAPI] = provider.NewWeatherAPI(svc, opts)
	}
	return fetchers
}
