package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/weather"
)

const visualCrossingName = config.ProviderVisualCrossing

// visualCrossingParams are forced on every request since the normalizer
// depends on metric units and on all three sections being present. Config
// keys arrive lower-cased through viper, so overrides are matched
// case-insensitively and dropped.
var visualCrossingParams = map[string]string{
	"unitGroup": "metric",
	"include":   "days,hours,current",
}

type VisualCrossing struct {
	up     *upstream
	apiKey string
	params map[string]string
	opts   Options
}

func NewVisualCrossing(cfg config.WeatherServiceConfig, opts Options) *VisualCrossing {
	return &VisualCrossing{
		up:     newUpstream(visualCrossingName, cfg.BaseURL, opts.timeout(), opts.Telemetry),
		apiKey: cfg.APIKey,
		params: cfg.Params,
		opts:   opts,
	}
}

func (p *VisualCrossing) Name() string {
	return visualCrossingName
}

func (p *VisualCrossing) FetchRaw(ctx context.Context, coords weather.Coordinates) ([]byte, error) {
	if p.apiKey == "" {
		return nil, &Error{Provider: visualCrossingName, Kind: ErrNoAPIKey}
	}

	q := url.Values{}
	for key, value := range p.params {
		if isFixedParam(key) {
			continue
		}
		q.Set(key, value)
	}
	for key, value := range visualCrossingParams {
		q.Set(key, value)
	}
	q.Set("key", p.apiKey)
	if p.opts.Language != "" {
		q.Set("lang", p.opts.Language)
	}

	path := fmt.Sprintf("/timeline/%s,%s", formatCoord(coords.Lat), formatCoord(coords.Lon))
	return p.up.get(ctx, path, q)
}

func (p *VisualCrossing) Fetch(ctx context.Context, coords weather.Coordinates) (*weather.NormalizedWeather, error) {
	raw, err := p.FetchRaw(ctx, coords)
	if err != nil {
		return nil, err
	}
	out, err := NormalizeVisualCrossing(raw, coords, p.opts.now())
	if err != nil {
		return nil, err
	}
	out.LocationName = p.opts.locationName(coords)
	return out, nil
}

type visualCrossingResponse struct {
	Timezone          string                    `json:"timezone"`
	TZOffset          float64                   `json:"tzoffset"`
	CurrentConditions *visualCrossingConditions `json:"currentConditions"`
	Days              []visualCrossingDay       `json:"days"`
}

type visualCrossingConditions struct {
	Datetime      string   `json:"datetime"`
	DatetimeEpoch int64    `json:"datetimeEpoch"`
	Temp          *float64 `json:"temp"`
	FeelsLike     *float64 `json:"feelslike"`
	Humidity      *float64 `json:"humidity"`
	Precip        *float64 `json:"precip"`
	WindSpeed     *float64 `json:"windspeed"`
	Icon          string   `json:"icon"`
	Conditions    string   `json:"conditions"`
}

type visualCrossingDay struct {
	Datetime   string                     `json:"datetime"`
	TempMax    *float64                   `json:"tempmax"`
	TempMin    *float64                   `json:"tempmin"`
	Precip     *float64                   `json:"precip"`
	Icon       string                     `json:"icon"`
	Conditions string                     `json:"conditions"`
	Hours      []visualCrossingConditions `json:"hours"`
}

// NormalizeVisualCrossing converts a Visual Crossing timeline document. It is a
// single-model provider, so model temperatures stay nil.
func NormalizeVisualCrossing(raw []byte, coords weather.Coordinates, _ time.Time) (*weather.NormalizedWeather, error) {
	var resp visualCrossingResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, shapeError(visualCrossingName, "decode: %w", err)
	}
	if resp.CurrentConditions == nil {
		return nil, shapeError(visualCrossingName, "missing currentConditions")
	}
	if resp.CurrentConditions.Temp == nil {
		return nil, shapeError(visualCrossingName, "missing currentConditions.temp")
	}
	if resp.Days == nil {
		return nil, shapeError(visualCrossingName, "missing days")
	}

	loc := loadLocation(resp.Timezone, int(resp.TZOffset*3600))

	daily := make([]weather.DailyForecast, 0, len(resp.Days))
	for _, d := range resp.Days {
		day := weather.DailyForecast{
			Date:             d.Datetime,
			WeatherCode:      weather.IconCode(d.Icon),
			TempMax:          deref(d.TempMax),
			TempMin:          deref(d.TempMin),
			PrecipitationSum: deref(d.Precip),
		}
		for _, h := range d.Hours {
			day.Hourly = append(day.Hourly, weather.HourlyForecast{
				WeatherSnapshot: visualCrossingSnapshot(h, epochTime(h.DatetimeEpoch, loc)),
			})
		}
		daily = append(daily, day)
	}

	return &weather.NormalizedWeather{
		Provider:     visualCrossingName,
		Current:      visualCrossingSnapshot(*resp.CurrentConditions, epochTime(resp.CurrentConditions.DatetimeEpoch, loc)),
		Daily:        daily,
		Timezone:     resp.Timezone,
		LocationName: coords.Name,
	}, nil
}

func visualCrossingSnapshot(c visualCrossingConditions, t time.Time) weather.WeatherSnapshot {
	code := weather.IconCode(c.Icon)
	condition := c.Conditions
	if condition == "" {
		condition = weather.Describe(code).Description
	}
	precip := deref(c.Precip)

	return weather.NewSnapshot(weather.Reading{
		Time:          t,
		Temperature:   deref(c.Temp),
		WeatherCode:   code,
		WindKph:       deref(c.WindSpeed),
		Humidity:      deref(c.Humidity),
		Precipitation: precip,
		Rain:          precip,
		FeelsLike:     c.FeelsLike,
		Condition:     condition,
	})
}

func isFixedParam(key string) bool {
	for fixed := range visualCrossingParams {
		if strings.EqualFold(fixed, key) {
			return true
		}
	}
	return false
}

func epochTime(epoch int64, loc *time.Location) time.Time {
	if epoch == 0 {
		return time.Time{}
	}
	return time.Unix(epoch, 0).In(loc)
}
