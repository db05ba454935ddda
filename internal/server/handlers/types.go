package handlers

import (
	"github.com/vzahanych/weather-compare/internal/scheduler"
	"github.com/vzahanych/weather-compare/internal/weather"
)

// WeatherRequest is the /weather query. Either City or both Lat and Lon must
// be set. Coordinates are kept as strings so that 0 is distinguishable from
// a missing value.
type WeatherRequest struct {
	Lat       string `form:"lat" json:"lat"`
	Lon       string `form:"lon" json:"lon"`
	Name      string `form:"name" json:"name" validate:"max=200"`
	City      string `form:"city" json:"city" validate:"max=200"`
	Providers string `form:"providers" json:"providers" validate:"max=200,providers"`
}

// CoordinatesQuery validates parsed coordinates.
type CoordinatesQuery struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

// WeatherResponse carries one entry per requested provider. Failed providers
// are null and explained in Errors.
type WeatherResponse struct {
	Location  weather.Coordinates         `json:"location"`
	Providers map[string]*ProviderWeather `json:"providers"`
	Errors    map[string]string           `json:"errors,omitempty"`
	FetchedAt string                      `json:"fetched_at"`
}

// ProviderWeather is the normalized forecast plus display hints for the
// current condition.
type ProviderWeather struct {
	*weather.NormalizedWeather
	Icon       string `json:"icon"`
	Background string `json:"background"`
}

type GeocodeResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type VisitsResponse struct {
	Count int64 `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// HealthResponse status is one of ok, alive, ready, degraded or unavailable.
type HealthResponse struct {
	Status    string                              `json:"status"`
	Uptime    string                              `json:"uptime"`
	Timestamp string                              `json:"timestamp,omitempty"`
	Providers map[string]scheduler.ProviderStatus `json:"providers,omitempty"`
}
