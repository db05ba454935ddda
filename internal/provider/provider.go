package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/weather"
	"github.com/vzahanych/weather-compare/pkg/telemetry"
)

// Provider fetches one upstream forecast and normalizes it.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, coords weather.Coordinates) (*weather.NormalizedWeather, error)
}

// Normalizer converts one raw upstream payload. now is the instant "current"
// conditions are selected for; providers that report their own observation
// time ignore it.
type Normalizer func(raw []byte, coords weather.Coordinates, now time.Time) (*weather.NormalizedWeather, error)

var (
	_ Normalizer = NormalizeOpenMeteo
	_ Normalizer = NormalizeVisualCrossing
	_ Normalizer = NormalizeWeatherAPI
)

// RawFetcher returns the upstream JSON untouched. Proxy endpoints use it to
// hand provider payloads to browsers without exposing API keys.
type RawFetcher interface {
	FetchRaw(ctx context.Context, coords weather.Coordinates) ([]byte, error)
}

var (
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("upstream returned non-success status")
	ErrShape     = errors.New("unexpected response shape")
	ErrNoAPIKey  = errors.New("api key not configured")
)

// Error is the failure type every adapter returns. Kind is one of the
// sentinel errors above, so callers can match with errors.Is.
type Error struct {
	Provider string
	Kind     error
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func shapeError(provider, format string, args ...any) error {
	return &Error{Provider: provider, Kind: ErrShape, Err: fmt.Errorf(format, args...)}
}

// Options carries settings shared by all providers.
type Options struct {
	Timeout             time.Duration
	Language            string
	DefaultLocationName string
	Telemetry           *telemetry.Telemetry
	Now                 func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 10 * time.Second
	}
	return o.Timeout
}

func (o Options) locationName(coords weather.Coordinates) string {
	if coords.Name != "" {
		return coords.Name
	}
	return o.DefaultLocationName
}

// OptionsFromConfig derives provider options from the weather section.
func OptionsFromConfig(cfg config.WeatherConfig, tele *telemetry.Telemetry) Options {
	return Options{
		Timeout:             time.Duration(cfg.Timeout) * time.Second,
		Language:            cfg.Language,
		DefaultLocationName: cfg.DefaultLocationName,
		Telemetry:           tele,
	}
}

// New builds the provider registered for cfg.Type.
func New(cfg config.WeatherServiceConfig, opts Options) (Provider, error) {
	switch cfg.Type {
	case config.ProviderOpenMeteo:
		return NewOpenMeteo(cfg, opts), nil
	case config.ProviderVisualCrossing:
		return NewVisualCrossing(cfg, opts), nil
	case config.ProviderWeatherAPI:
		return NewWeatherAPI(cfg, opts), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func loadLocation(name string, offsetSeconds int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
		return time.FixedZone(name, offsetSeconds)
	}
	if offsetSeconds != 0 {
		return time.FixedZone("", offsetSeconds)
	}
	return time.UTC
}
