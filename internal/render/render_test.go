package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-compare/internal/aggregator"
	"github.com/vzahanych/weather-compare/internal/weather"
)

func ptr(v float64) *float64 { return &v }

func TestCompare(t *testing.T) {
	res := &aggregator.Result{
		Location: weather.Coordinates{Lat: 31.95, Lon: 35.93, Name: "Amman, Jordan"},
		Providers: map[string]*weather.NormalizedWeather{
			"open-meteo": {
				Current: weather.WeatherSnapshot{
					Temperature: 21, WeatherCode: 95, WindSpeed: 18, WindSpeedMps: 5,
					Humidity: 50, FeelsLike: ptr(20.4),
				},
				ModelTemperatures: weather.ModelTemperatures{ECMWF: ptr(20), GFS: ptr(22)},
				Daily: []weather.DailyForecast{
					{Date: "2024-01-01", WeatherCode: 61, TempMax: 23, TempMin: 11, PrecipitationSum: 0.2},
					{Date: "2024-01-02", WeatherCode: 0, TempMax: 17.5, TempMin: 10},
				},
			},
			"weather-api": nil,
		},
		Errors: map[string]string{"weather-api": "api key not configured"},
	}

	var buf bytes.Buffer
	require.NoError(t, Compare(&buf, res, 5))
	out := buf.String()

	assert.Contains(t, out, "Amman, Jordan")
	assert.Contains(t, out, "⛈️ 21° Thunderstorm")
	assert.Contains(t, out, "20°")
	assert.Contains(t, out, "18.0 km/h (5.0 m/s)")
	assert.Contains(t, out, "ECMWF 20° GFS 22° ICON -")
	assert.Contains(t, out, "2024-01-02")
	assert.Contains(t, out, "☀️ 18°/10°")
	assert.Contains(t, out, "weather-api: api key not configured")
}

func TestCompareStopsAtAvailableDays(t *testing.T) {
	res := &aggregator.Result{
		Location: weather.Coordinates{Lat: 1, Lon: 2},
		Providers: map[string]*weather.NormalizedWeather{
			"a": {Daily: []weather.DailyForecast{{Date: "2024-01-01"}}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Compare(&buf, res, 3))
	assert.Contains(t, buf.String(), "1.0000,2.0000")
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("2024-01")))
}

func TestTemperature(t *testing.T) {
	assert.Equal(t, "0°", Temperature(0))
	assert.Equal(t, "-12°", Temperature(-11.55))
}
