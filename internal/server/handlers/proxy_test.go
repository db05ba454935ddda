package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/weather"
	"go.uber.org/zap/zaptest"
)

type rawFetcherFunc func(ctx context.Context, coords weather.Coordinates) ([]byte, error)

func (f rawFetcherFunc) FetchRaw(ctx context.Context, coords weather.Coordinates) ([]byte, error) {
	return f(ctx, coords)
}

const allowedOrigin = "https://mo-ja-sh.github.io"

func proxyRouter(t *testing.T, f provider.RawFetcher) *gin.Engine {
	h := NewProxyHandler(map[string]provider.RawFetcher{"weather-api": f}, []string{allowedOrigin, "http://localhost:3000"}, zaptest.NewLogger(t))
	r := gin.New()
	r.GET("/proxy/weather-api", h.Serve("weather-api"))
	r.GET("/proxy/visual-crossing", h.Serve("visual-crossing"))
	return r
}

func origin(o string) http.Header {
	return http.Header{"Origin": []string{o}}
}

func TestProxyRejectsUnknownOrigin(t *testing.T) {
	called := false
	r := proxyRouter(t, rawFetcherFunc(func(context.Context, weather.Coordinates) ([]byte, error) {
		called = true
		return nil, nil
	}))

	w := serve(r, http.MethodGet, "/proxy/weather-api?lat=31.95&lon=35.93", origin("https://evil.example"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode[map[string]string](t, w), "error")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	w = serve(r, http.MethodGet, "/proxy/weather-api?lat=31.95&lon=35.93", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProxyRequiresCoordinates(t *testing.T) {
	r := proxyRouter(t, rawFetcherFunc(func(context.Context, weather.Coordinates) ([]byte, error) {
		return []byte(`{}`), nil
	}))

	for _, target := range []string{
		"/proxy/weather-api",
		"/proxy/weather-api?lat=31.95",
		"/proxy/weather-api?lon=35.93",
		"/proxy/weather-api?lat=abc&lon=35.93",
		"/proxy/weather-api?lat=95&lon=35.93",
	} {
		w := serve(r, http.MethodGet, target, origin(allowedOrigin))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, decode[map[string]string](t, w), "error", target)
	}
}

func TestProxyRelaysUpstreamJSON(t *testing.T) {
	payload := `{"current":{"current":{"temp_c":18}},"forecast":{"forecast":{"forecastday":[]}}}`
	var got weather.Coordinates
	r := proxyRouter(t, rawFetcherFunc(func(_ context.Context, coords weather.Coordinates) ([]byte, error) {
		got = coords
		return []byte(payload), nil
	}))

	w := serve(r, http.MethodGet, "/proxy/weather-api?lat=31.95&lon=35.93", origin(allowedOrigin))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, allowedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, payload, w.Body.String())
	assert.Equal(t, 31.95, got.Lat)
	assert.Equal(t, 35.93, got.Lon)
}

func TestProxyUpstreamFailure(t *testing.T) {
	r := proxyRouter(t, rawFetcherFunc(func(context.Context, weather.Coordinates) ([]byte, error) {
		return nil, &provider.Error{Provider: "weather-api", Kind: provider.ErrStatus}
	}))

	w := serve(r, http.MethodGet, "/proxy/weather-api?lat=31.95&lon=35.93", origin("http://localhost:3000"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "weather-api")

	// no fetcher registered for visual-crossing
	w = serve(r, http.MethodGet, "/proxy/visual-crossing?lat=31.95&lon=35.93", origin(allowedOrigin))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
