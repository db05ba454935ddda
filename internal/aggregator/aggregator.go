package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/weather"
	"github.com/vzahanych/weather-compare/pkg/logger"
	"github.com/vzahanych/weather-compare/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var (
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrAllProvidersFailed = errors.New("failed to fetch weather data")
)

// Result holds one normalized forecast per provider that answered. Providers
// that failed have a nil entry and an explanation in Errors.
type Result struct {
	Location  weather.Coordinates                   `json:"location"`
	Providers map[string]*weather.NormalizedWeather `json:"providers"`
	Errors    map[string]string                     `json:"errors,omitempty"`
	FetchedAt time.Time                             `json:"fetched_at"`
}

// Succeeded lists the providers that returned data, sorted by name.
func (r *Result) Succeeded() []string {
	names := make([]string, 0, len(r.Providers))
	for name, data := range r.Providers {
		if data != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// MetricsRecorder interface for recording metrics
type MetricsRecorder interface {
	RecordWeatherServiceCall(ctx context.Context, service string, success bool)
}

type Aggregator struct {
	providers map[string]provider.Provider
	timeout   time.Duration
	logger    *zap.Logger
	tele      *telemetry.Telemetry
	metrics   MetricsRecorder
	now       func() time.Time
}

// New composes the given providers. timeout bounds each provider call.
func New(providers []provider.Provider, timeout time.Duration, logger *zap.Logger, tele *telemetry.Telemetry) *Aggregator {
	agg := &Aggregator{
		providers: make(map[string]provider.Provider, len(providers)),
		timeout:   timeout,
		logger:    logger,
		tele:      tele,
		now:       time.Now,
	}
	for _, p := range providers {
		agg.providers[p.Name()] = p
	}
	return agg
}

// NewFromConfig builds one provider per enabled service.
func NewFromConfig(cfg config.WeatherConfig, logger *zap.Logger, tele *telemetry.Telemetry) (*Aggregator, error) {
	opts := provider.OptionsFromConfig(cfg, tele)

	var providers []provider.Provider
	for name, svcCfg := range cfg.Services {
		if !svcCfg.Enabled {
			continue
		}
		if svcCfg.Type == "" {
			svcCfg.Type = name
		}
		p, err := provider.New(svcCfg, opts)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", name, err)
		}
		providers = append(providers, p)
		logger.Info("Registered weather provider", zap.String("provider", p.Name()))
	}

	return New(providers, time.Duration(cfg.Timeout)*time.Second, logger, tele), nil
}

// SetMetricsRecorder sets the metrics recorder for the aggregator
func (a *Aggregator) SetMetricsRecorder(metrics MetricsRecorder) {
	a.metrics = metrics
}

// Providers returns the registered provider names, sorted.
func (a *Aggregator) Providers() []string {
	names := make([]string, 0, len(a.providers))
	for name := range a.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *Aggregator) Provider(name string) (provider.Provider, bool) {
	p, ok := a.providers[name]
	return p, ok
}

func (a *Aggregator) resolve(names []string) ([]provider.Provider, error) {
	if len(names) == 0 {
		names = a.Providers()
	}

	seen := make(map[string]bool, len(names))
	out := make([]provider.Provider, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		p, ok := a.providers[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
		}
		seen[name] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: none configured", ErrUnknownProvider)
	}
	return out, nil
}

// Fetch calls the named providers (all registered ones when names is empty)
// in parallel. It fails only when every provider failed.
func (a *Aggregator) Fetch(ctx context.Context, coords weather.Coordinates, names []string) (*Result, error) {
	ctx, span := a.tele.GetTracer().Start(ctx, "aggregator.Fetch")
	defer span.End()

	reqLogger := logger.FromContext(ctx, a.logger)

	span.SetAttributes(
		attribute.Float64("lat", coords.Lat),
		attribute.Float64("lon", coords.Lon),
	)

	if err := coords.Validate(); err != nil {
		return nil, err
	}

	providers, err := a.resolve(names)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("providers_count", len(providers)))

	result := &Result{
		Location:  coords,
		Providers: make(map[string]*weather.NormalizedWeather, len(providers)),
		Errors:    make(map[string]string),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, p := range providers {
		wg.Add(1)
		go func(p provider.Provider) {
			defer wg.Done()

			data, err := a.fetchOne(ctx, p, coords, reqLogger)

			mu.Lock()
			defer mu.Unlock()
			result.Providers[p.Name()] = data
			if err != nil {
				result.Errors[p.Name()] = err.Error()
			}
		}(p)
	}

	wg.Wait()
	result.FetchedAt = a.now().UTC()

	if len(result.Errors) == len(providers) {
		span.SetAttributes(attribute.Bool("success", false))
		reqLogger.Error("All weather providers failed",
			zap.Any("errors", result.Errors))
		a.tele.RecordError(ctx, ErrAllProvidersFailed, map[string]string{"location": coords.Key()})
		return nil, ErrAllProvidersFailed
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("results_count", len(providers)-len(result.Errors)),
	)
	reqLogger.Info("Weather data fetched",
		zap.String("location", coords.Key()),
		zap.Strings("providers", result.Succeeded()),
		zap.Int("failed", len(result.Errors)))

	return result, nil
}

func (a *Aggregator) fetchOne(ctx context.Context, p provider.Provider, coords weather.Coordinates, log *zap.Logger) (*weather.NormalizedWeather, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	data, err := p.Fetch(ctx, coords)
	if err == nil && data == nil {
		err = fmt.Errorf("%s: no data", p.Name())
	}

	if a.metrics != nil {
		a.metrics.RecordWeatherServiceCall(ctx, p.Name(), err == nil)
	}

	if err != nil {
		log.Warn("Weather provider failed",
			zap.String("provider", p.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return nil, err
	}

	for _, warning := range data.QualityWarnings() {
		log.Warn("Weather data quality warning",
			zap.String("provider", p.Name()),
			zap.String("warning", warning))
	}
	log.Debug("Weather provider responded",
		zap.String("provider", p.Name()),
		zap.Duration("duration", time.Since(start)))

	return data, nil
}
