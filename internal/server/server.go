package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-compare/internal/aggregator"
	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/counter"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/server/handlers"
	"github.com/vzahanych/weather-compare/internal/server/middlewares"
	"github.com/vzahanych/weather-compare/pkg/telemetry"
	"go.uber.org/zap"
)

// proxied lists the providers exposed under /proxy.
var proxied = []string{config.ProviderVisualCrossing, config.ProviderWeatherAPI}

// Dependencies are the collaborators the HTTP layer serves. Readiness may be
// nil when the provider probe is disabled.
type Dependencies struct {
	Aggregator *aggregator.Aggregator
	Geocoder   handlers.Geocoder
	Counter    counter.Counter
	Proxies    map[string]provider.RawFetcher
	Readiness  handlers.ReadinessSource
}

type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	server *http.Server
	deps   Dependencies
	logger *zap.Logger
	tele   *telemetry.Telemetry
}

func NewServer(cfg *config.Config, deps Dependencies, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	metrics := middlewares.NewMetricsMiddleware(logger, tele)

	engine.Use(middlewares.RequestIDMiddleware())
	engine.Use(middlewares.LoggingMiddleware(logger, time.RFC3339, true))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(metrics.Handler())
	engine.Use(middlewares.CORSMiddleware(cfg.Proxy.AllowedOrigins))

	s := &Server{
		cfg:    cfg,
		engine: engine,
		deps:   deps,
		logger: logger,
		tele:   tele,
	}

	s.setupRoutes(metrics.GetHTTPMetrics())
	return s
}

func (s *Server) setupRoutes(httpMetrics handlers.HTTPMetricsSource) {
	metricsHandler := handlers.NewMetricsHandler(s.logger, httpMetrics)
	if s.deps.Aggregator != nil {
		s.deps.Aggregator.SetMetricsRecorder(metricsHandler)
	}

	// Business endpoints
	if s.deps.Aggregator != nil {
		s.engine.GET("/weather", handlers.NewWeatherHandler(s.deps.Aggregator, s.deps.Geocoder, s.logger).GetWeather)
	}
	if s.deps.Geocoder != nil {
		s.engine.GET("/geocode", handlers.NewGeocodeHandler(s.deps.Geocoder, s.logger).Search)
	}
	if s.deps.Counter != nil {
		visits := handlers.NewVisitsHandler(s.deps.Counter, s.logger)
		s.engine.GET("/visits", visits.Visit)
		s.engine.GET("/visits/current", visits.Current)
	}

	// Key-hiding proxies
	proxy := handlers.NewProxyHandler(s.deps.Proxies, s.cfg.Proxy.AllowedOrigins, s.logger)
	for _, name := range proxied {
		s.engine.GET("/proxy/"+name, proxy.Serve(name))
	}

	// Health endpoints (Kubernetes friendly)
	health := handlers.NewHealthHandler(s.logger, s.deps.Readiness)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", metricsHandler.ServeMetrics)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeout) * time.Second,
	}

	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
