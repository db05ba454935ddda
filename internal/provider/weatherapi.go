package provider

import (
	"context"
	"fmt"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/weather"
	"golang.org/x/sync/errgroup"
)

const weatherAPIName = config.ProviderWeatherAPI

// WeatherAPI talks to WeatherAPI.com. Its raw payload is the proxy envelope
//
//	{"current": <current.json response>, "forecast": <forecast.json response>}
//
// so the current observation lives at current.current and the days at
// forecast.forecast.forecastday.
type WeatherAPI struct {
	up     *upstream
	apiKey string
	params map[string]string
	opts   Options
}

func NewWeatherAPI(cfg config.WeatherServiceConfig, opts Options) *WeatherAPI {
	return &WeatherAPI{
		up:     newUpstream(weatherAPIName, cfg.BaseURL, opts.timeout(), opts.Telemetry),
		apiKey: cfg.APIKey,
		params: cfg.Params,
		opts:   opts,
	}
}

func (p *WeatherAPI) Name() string {
	return weatherAPIName
}

type weatherAPIEnvelope struct {
	Current  json.RawMessage `json:"current"`
	Forecast json.RawMessage `json:"forecast"`
}

// FetchRaw queries current.json and forecast.json in parallel and wraps both
// bodies in the proxy envelope.
func (p *WeatherAPI) FetchRaw(ctx context.Context, coords weather.Coordinates) ([]byte, error) {
	if p.apiKey == "" {
		return nil, &Error{Provider: weatherAPIName, Kind: ErrNoAPIKey}
	}

	base := url.Values{}
	base.Set("key", p.apiKey)
	base.Set("q", fmt.Sprintf("%s,%s", formatCoord(coords.Lat), formatCoord(coords.Lon)))
	if p.opts.Language != "" {
		base.Set("lang", p.opts.Language)
	}

	currentQuery := url.Values{}
	forecastQuery := url.Values{}
	for key, values := range base {
		currentQuery[key] = values
		forecastQuery[key] = values
	}
	for key, value := range p.params {
		forecastQuery.Set(key, value)
		if key == "aqi" {
			currentQuery.Set(key, value)
		}
	}

	var env weatherAPIEnvelope
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := p.up.get(gctx, "/current.json", currentQuery)
		env.Current = body
		return err
	})
	g.Go(func() error {
		body, err := p.up.get(gctx, "/forecast.json", forecastQuery)
		env.Forecast = body
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out, err := json.Marshal(env)
	if err != nil {
		return nil, shapeError(weatherAPIName, "encode envelope: %w", err)
	}
	return out, nil
}

func (p *WeatherAPI) Fetch(ctx context.Context, coords weather.Coordinates) (*weather.NormalizedWeather, error) {
	raw, err := p.FetchRaw(ctx, coords)
	if err != nil {
		return nil, err
	}
	out, err := NormalizeWeatherAPI(raw, coords, p.opts.now())
	if err != nil {
		return nil, err
	}
	out.LocationName = p.opts.locationName(coords)
	return out, nil
}

type weatherAPIResponse struct {
	Current *struct {
		Location *weatherAPILocation   `json:"location"`
		Current  *weatherAPIConditions `json:"current"`
	} `json:"current"`
	Forecast *struct {
		Location *weatherAPILocation `json:"location"`
		Forecast *struct {
			ForecastDay []weatherAPIForecastDay `json:"forecastday"`
		} `json:"forecast"`
	} `json:"forecast"`
}

type weatherAPILocation struct {
	TzID string `json:"tz_id"`
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Code int    `json:"code"`
}

type weatherAPIConditions struct {
	LastUpdatedEpoch int64               `json:"last_updated_epoch"`
	TimeEpoch        int64               `json:"time_epoch"`
	TempC            *float64            `json:"temp_c"`
	FeelsLikeC       *float64            `json:"feelslike_c"`
	Humidity         *float64            `json:"humidity"`
	PrecipMM         *float64            `json:"precip_mm"`
	WindKph          *float64            `json:"wind_kph"`
	Condition        weatherAPICondition `json:"condition"`
}

type weatherAPIForecastDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC      *float64            `json:"maxtemp_c"`
		MinTempC      *float64            `json:"mintemp_c"`
		TotalPrecipMM *float64            `json:"totalprecip_mm"`
		Condition     weatherAPICondition `json:"condition"`
	} `json:"day"`
	Hour []weatherAPIConditions `json:"hour"`
}

// NormalizeWeatherAPI converts the WeatherAPI.com proxy envelope.
func NormalizeWeatherAPI(raw []byte, coords weather.Coordinates, _ time.Time) (*weather.NormalizedWeather, error) {
	var resp weatherAPIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, shapeError(weatherAPIName, "decode: %w", err)
	}
	if resp.Current == nil || resp.Current.Current == nil {
		return nil, shapeError(weatherAPIName, "missing current.current")
	}
	if resp.Current.Current.TempC == nil {
		return nil, shapeError(weatherAPIName, "missing current.current.temp_c")
	}
	if resp.Forecast == nil || resp.Forecast.Forecast == nil || resp.Forecast.Forecast.ForecastDay == nil {
		return nil, shapeError(weatherAPIName, "missing forecast.forecast.forecastday")
	}

	var tz string
	switch {
	case resp.Current.Location != nil && resp.Current.Location.TzID != "":
		tz = resp.Current.Location.TzID
	case resp.Forecast.Location != nil:
		tz = resp.Forecast.Location.TzID
	}
	loc := loadLocation(tz, 0)

	cur := resp.Current.Current
	daily := make([]weather.DailyForecast, 0, len(resp.Forecast.Forecast.ForecastDay))
	for _, d := range resp.Forecast.Forecast.ForecastDay {
		day := weather.DailyForecast{
			Date:             d.Date,
			WeatherCode:      weather.CanonicalCode(d.Day.Condition.Code, weather.SchemeWeatherAPI),
			TempMax:          deref(d.Day.MaxTempC),
			TempMin:          deref(d.Day.MinTempC),
			PrecipitationSum: deref(d.Day.TotalPrecipMM),
		}
		for _, h := range d.Hour {
			day.Hourly = append(day.Hourly, weather.HourlyForecast{
				WeatherSnapshot: weatherAPISnapshot(h, epochTime(h.TimeEpoch, loc)),
			})
		}
		daily = append(daily, day)
	}

	return &weather.NormalizedWeather{
		Provider:     weatherAPIName,
		Current:      weatherAPISnapshot(*cur, epochTime(cur.LastUpdatedEpoch, loc)),
		Daily:        daily,
		Timezone:     tz,
		LocationName: coords.Name,
	}, nil
}

func weatherAPISnapshot(c weatherAPIConditions, t time.Time) weather.WeatherSnapshot {
	code := weather.CanonicalCode(c.Condition.Code, weather.SchemeWeatherAPI)
	condition := c.Condition.Text
	if condition == "" {
		condition = weather.Describe(code).Description
	}
	precip := deref(c.PrecipMM)

	return weather.NewSnapshot(weather.Reading{
		Time:          t,
		Temperature:   deref(c.TempC),
		WeatherCode:   code,
		WindKph:       deref(c.WindKph),
		Humidity:      deref(c.Humidity),
		Precipitation: precip,
		Rain:          precip,
		FeelsLike:     c.FeelsLikeC,
		Condition:     condition,
	})
}
