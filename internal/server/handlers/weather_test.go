package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-compare/internal/aggregator"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/weather"
	"go.uber.org/zap/zaptest"
)

type fakeFetcher struct {
	coords weather.Coordinates
	names  []string
	result *aggregator.Result
	err    error
}

func (f *fakeFetcher) Fetch(_ context.Context, coords weather.Coordinates, names []string) (*aggregator.Result, error) {
	f.coords = coords
	f.names = names
	return f.result, f.err
}

type fakeGeocoder struct {
	coords weather.Coordinates
	err    error
}

func (g *fakeGeocoder) Search(context.Context, string) (weather.Coordinates, error) {
	return g.coords, g.err
}

func weatherRouter(t *testing.T, f aggregator.Fetcher, g Geocoder) *gin.Engine {
	h := NewWeatherHandler(f, g, zaptest.NewLogger(t))
	r := gin.New()
	r.GET("/weather", h.GetWeather)
	return r
}

func partialResult(coords weather.Coordinates) *aggregator.Result {
	return &aggregator.Result{
		Location: coords,
		Providers: map[string]*weather.NormalizedWeather{
			"open-meteo": {
				Provider: "open-meteo",
				Current:  weather.WeatherSnapshot{Temperature: 21, WeatherCode: 95},
			},
			"weather-api": nil,
		},
		Errors:    map[string]string{"weather-api": "weather-api: api key not configured"},
		FetchedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestGetWeatherByCoordinates(t *testing.T) {
	f := &fakeFetcher{}
	f.result = partialResult(weather.Coordinates{Lat: 0, Lon: 35.93, Name: "Somewhere"})
	r := weatherRouter(t, f, nil)

	w := serve(r, http.MethodGet, "/weather?lat=0&lon=35.93&name=Somewhere&providers=open-meteo,%20weather-api", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, weather.Coordinates{Lat: 0, Lon: 35.93, Name: "Somewhere"}, f.coords)
	assert.Equal(t, []string{"open-meteo", "weather-api"}, f.names)

	body := decode[map[string]any](t, w)
	providers := body["providers"].(map[string]any)
	assert.Nil(t, providers["weather-api"])
	om := providers["open-meteo"].(map[string]any)
	assert.Equal(t, "⛈️", om["icon"])
	assert.Equal(t, "stormy", om["background"])
	assert.Equal(t, "open-meteo", om["provider"])
	assert.Contains(t, body["errors"], "weather-api")
	assert.Equal(t, "2024-01-01T08:00:00Z", body["fetched_at"])
}

func TestGetWeatherAllProvidersFailed(t *testing.T) {
	r := weatherRouter(t, &fakeFetcher{err: aggregator.ErrAllProvidersFailed}, nil)

	w := serve(r, http.MethodGet, "/weather?lat=31.95&lon=35.93", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "failed to fetch weather data", decode[ErrorResponse](t, w).Error)
}

func TestGetWeatherUnknownProvider(t *testing.T) {
	f := &fakeFetcher{result: partialResult(weather.Coordinates{})}
	r := weatherRouter(t, f, nil)

	w := serve(r, http.MethodGet, "/weather?lat=31.95&lon=35.93&providers=open-meteo,darksky", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, "INVALID_PARAMS", resp.Code)
	assert.Contains(t, resp.Details, "providers must list providers from")
	assert.Nil(t, f.names, "aggregator must not be called")
}

func TestGetWeatherProviderNotEnabled(t *testing.T) {
	f := &fakeFetcher{err: aggregator.ErrUnknownProvider}
	r := weatherRouter(t, f, nil)

	w := serve(r, http.MethodGet, "/weather?lat=31.95&lon=35.93&providers=visual-crossing", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNKNOWN_PROVIDER", decode[ErrorResponse](t, w).Code)
	assert.Equal(t, []string{"visual-crossing"}, f.names)
}

func TestGetWeatherInvalidCoordinates(t *testing.T) {
	r := weatherRouter(t, &fakeFetcher{}, nil)

	cases := map[string]string{
		"missing lon":  "/weather?lat=31.95",
		"missing both": "/weather",
		"not a number": "/weather?lat=north&lon=35",
		"lat range":    "/weather?lat=91&lon=35",
		"lon range":    "/weather?lat=31&lon=-181",
	}
	for name, target := range cases {
		t.Run(name, func(t *testing.T) {
			w := serve(r, http.MethodGet, target, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "INVALID_PARAMS", decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestGetWeatherByCity(t *testing.T) {
	amman := weather.Coordinates{Lat: 31.95, Lon: 35.93, Name: "Amman, Jordan"}
	f := &fakeFetcher{result: partialResult(amman)}
	r := weatherRouter(t, f, &fakeGeocoder{coords: amman})

	w := serve(r, http.MethodGet, "/weather?city=Amman", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, amman, f.coords)
	assert.Nil(t, f.names)
}

func TestGetWeatherCityNotFound(t *testing.T) {
	err := errors.Join(provider.ErrCityNotFound, errors.New("Atlantis"))
	r := weatherRouter(t, &fakeFetcher{}, &fakeGeocoder{err: err})

	w := serve(r, http.MethodGet, "/weather?city=Atlantis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CITY_NOT_FOUND", decode[ErrorResponse](t, w).Code)
}

func TestGetWeatherGeocoderDown(t *testing.T) {
	err := &provider.Error{Provider: "geocoding", Kind: provider.ErrTransport}
	r := weatherRouter(t, &fakeFetcher{}, &fakeGeocoder{err: err})

	w := serve(r, http.MethodGet, "/weather?city=Amman", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
