package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/weather"
)

const geocodingName = "geocoding"

var (
	ErrEmptyQuery   = errors.New("empty city query")
	ErrCityNotFound = errors.New("city not found")
)

// Geocoder resolves city names through the Open-Meteo geocoding API.
type Geocoder struct {
	up       *upstream
	language string
}

func NewGeocoder(cfg config.GeocodingConfig, opts Options) *Geocoder {
	return &Geocoder{
		up:       newUpstream(geocodingName, cfg.BaseURL, opts.timeout(), opts.Telemetry),
		language: opts.Language,
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Search returns the coordinates of the best match for name, labelled
// "<name>, <country>".
func (g *Geocoder) Search(ctx context.Context, name string) (weather.Coordinates, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return weather.Coordinates{}, ErrEmptyQuery
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("count", "1")
	q.Set("format", "json")
	if g.language != "" {
		q.Set("language", g.language)
	}

	raw, err := g.up.get(ctx, "/search", q)
	if err != nil {
		return weather.Coordinates{}, err
	}

	var resp geocodingResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return weather.Coordinates{}, shapeError(geocodingName, "decode: %w", err)
	}
	if len(resp.Results) == 0 {
		return weather.Coordinates{}, fmt.Errorf("%w: %s", ErrCityNotFound, name)
	}

	r := resp.Results[0]
	label := r.Name
	if r.Country != "" {
		label = fmt.Sprintf("%s, %s", r.Name, r.Country)
	}
	return weather.NewCoordinates(r.Latitude, r.Longitude, label)
}
