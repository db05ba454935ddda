package provider

import (
	"context"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/vzahanych/weather-compare/internal/config"
	"github.com/vzahanych/weather-compare/internal/weather"
)

const openMeteoName = config.ProviderOpenMeteo

type OpenMeteo struct {
	up     *upstream
	params map[string]string
	opts   Options
}

func NewOpenMeteo(cfg config.WeatherServiceConfig, opts Options) *OpenMeteo {
	return &OpenMeteo{
		up:     newUpstream(openMeteoName, cfg.BaseURL, opts.timeout(), opts.Telemetry),
		params: cfg.Params,
		opts:   opts,
	}
}

func (p *OpenMeteo) Name() string {
	return openMeteoName
}

func (p *OpenMeteo) FetchRaw(ctx context.Context, coords weather.Coordinates) ([]byte, error) {
	q := url.Values{}
	for key, value := range p.params {
		q.Set(key, value)
	}
	q.Set("latitude", formatCoord(coords.Lat))
	q.Set("longitude", formatCoord(coords.Lon))

	return p.up.get(ctx, "/forecast", q)
}

func (p *OpenMeteo) Fetch(ctx context.Context, coords weather.Coordinates) (*weather.NormalizedWeather, error) {
	raw, err := p.FetchRaw(ctx, coords)
	if err != nil {
		return nil, err
	}
	out, err := NormalizeOpenMeteo(raw, coords, p.opts.now())
	if err != nil {
		return nil, err
	}
	out.LocationName = p.opts.locationName(coords)
	return out, nil
}

type openMeteoResponse struct {
	Timezone         string          `json:"timezone"`
	UTCOffsetSeconds int             `json:"utc_offset_seconds"`
	Hourly           *openMeteoBlock `json:"hourly"`
	Daily            *openMeteoBlock `json:"daily"`
}

// modelSeries holds one array per forecast model, in weather.Models order.
type modelSeries [3][]*float64

func (s modelSeries) at(i int) [3]*float64 {
	var out [3]*float64
	for m, values := range s {
		if i < len(values) {
			out[m] = values[i]
		}
	}
	return out
}

// openMeteoBlock is an hourly or daily section: a time axis plus one array per
// "<variable>_<model>" key. With a single model Open-Meteo drops the suffix;
// such keys fill the primary model slot.
type openMeteoBlock struct {
	Time   []string
	series map[string]modelSeries
}

func (b *openMeteoBlock) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	b.series = make(map[string]modelSeries)
	unsuffixed := make(map[string][]*float64)

	for key, raw := range fields {
		if key == "time" {
			if err := json.Unmarshal(raw, &b.Time); err != nil {
				return err
			}
			continue
		}

		var values []*float64
		if err := json.Unmarshal(raw, &values); err != nil {
			// non-numeric series such as sunrise times are not used
			continue
		}

		variable, slot := splitModelKey(key)
		if slot < 0 {
			unsuffixed[variable] = values
			continue
		}
		s := b.series[variable]
		s[slot] = values
		b.series[variable] = s
	}

	primary := modelSlot(weather.PrimaryModel)
	for variable, values := range unsuffixed {
		s := b.series[variable]
		if s[primary] == nil {
			s[primary] = values
		}
		b.series[variable] = s
	}

	return nil
}

func (b *openMeteoBlock) at(variable string, i int) [3]*float64 {
	return b.series[variable].at(i)
}

func modelSlot(m weather.Model) int {
	for i, candidate := range weather.Models {
		if candidate == m {
			return i
		}
	}
	return -1
}

func splitModelKey(key string) (string, int) {
	for i, m := range weather.Models {
		suffix := "_" + string(m)
		if strings.HasSuffix(key, suffix) {
			return strings.TrimSuffix(key, suffix), i
		}
	}
	return key, -1
}

func modelTemperatures(v [3]*float64) weather.ModelTemperatures {
	return weather.ModelTemperatures{ECMWF: v[0], GFS: v[1], ICON: v[2]}
}

// primaryFirst returns the primary model value, falling back to the next
// available model, then 0.
func primaryFirst(v [3]*float64) float64 {
	return weather.FirstPresent(v[0], v[1], v[2])
}

// NormalizeOpenMeteo converts a multi-model Open-Meteo forecast. Temperatures
// are averaged across models; every other quantity comes from the primary
// model.
func NormalizeOpenMeteo(raw []byte, coords weather.Coordinates, now time.Time) (*weather.NormalizedWeather, error) {
	var resp openMeteoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, shapeError(openMeteoName, "decode: %w", err)
	}
	if resp.Hourly == nil || len(resp.Hourly.Time) == 0 {
		return nil, shapeError(openMeteoName, "missing hourly series")
	}
	if resp.Daily == nil {
		return nil, shapeError(openMeteoName, "missing daily series")
	}

	loc := loadLocation(resp.Timezone, resp.UTCOffsetSeconds)

	hourly := make([]weather.HourlyForecast, len(resp.Hourly.Time))
	for i, ts := range resp.Hourly.Time {
		hourly[i] = openMeteoHour(resp.Hourly, i, ts, loc)
	}

	idx := weather.SelectCurrentIndex(resp.Hourly.Time, now, loc)
	current := hourly[idx]

	daily := make([]weather.DailyForecast, 0, len(resp.Daily.Time))
	for i, date := range resp.Daily.Time {
		maxes := resp.Daily.at("temperature_2m_max", i)
		mins := resp.Daily.at("temperature_2m_min", i)
		precip := resp.Daily.at("precipitation_sum", i)

		day := weather.DailyForecast{
			Date:             date,
			WeatherCode:      int(primaryFirst(resp.Daily.at("weathercode", i))),
			TempMax:          weather.Average(maxes[:], maxes[0]),
			TempMin:          weather.Average(mins[:], mins[0]),
			PrecipitationSum: primaryFirst(precip),
			ModelPrecipitation: &weather.ModelPrecipitation{
				ECMWF: precip[0],
				GFS:   precip[1],
				ICON:  precip[2],
			},
		}
		for j, ts := range resp.Hourly.Time {
			if strings.HasPrefix(ts, date) {
				day.Hourly = append(day.Hourly, hourly[j])
			}
		}
		daily = append(daily, day)
	}

	return &weather.NormalizedWeather{
		Provider:          openMeteoName,
		Current:           current.WeatherSnapshot,
		ModelTemperatures: current.ModelTemperatures,
		Daily:             daily,
		Timezone:          resp.Timezone,
		LocationName:      coords.Name,
	}, nil
}

func openMeteoHour(b *openMeteoBlock, i int, ts string, loc *time.Location) weather.HourlyForecast {
	temps := b.at("temperature_2m", i)
	mt := modelTemperatures(temps)
	temp := weather.Average(mt.Values(), mt.ECMWF)
	wind := primaryFirst(b.at("windspeed_10m", i))
	code := int(primaryFirst(b.at("weathercode", i)))
	feels := weather.FeelsLike(temp, wind)

	t, _ := weather.ParseLocalTime(ts, loc)

	snap := weather.NewSnapshot(weather.Reading{
		Time:          t,
		Temperature:   temp,
		WeatherCode:   code,
		WindKph:       wind,
		Humidity:      primaryFirst(b.at("relativehumidity_2m", i)),
		Precipitation: primaryFirst(b.at("precipitation", i)),
		Rain:          primaryFirst(b.at("rain", i)),
		FeelsLike:     &feels,
		Condition:     weather.Describe(code).Description,
	})

	return weather.HourlyForecast{
		WeatherSnapshot:   snap,
		ModelTemperatures: mt,
	}
}
