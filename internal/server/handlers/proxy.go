package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/server/utils"
	"github.com/vzahanych/weather-compare/internal/weather"
	"go.uber.org/zap"
)

// ProxyHandler relays raw provider payloads to allow-listed browser origins
// so that API keys stay on the server. The WeatherAPI.com payload is the
// envelope {"current": ..., "forecast": ...}.
type ProxyHandler struct {
	fetchers map[string]provider.RawFetcher
	allowed  map[string]bool
	logger   *zap.Logger
}

func NewProxyHandler(fetchers map[string]provider.RawFetcher, allowedOrigins []string, logger *zap.Logger) *ProxyHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &ProxyHandler{
		fetchers: fetchers,
		allowed:  allowed,
		logger:   logger,
	}
}

// Serve returns the handler for one provider.
func (h *ProxyHandler) Serve(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := utils.GetContextFromGinContext(c)
		reqLogger := utils.RequestLogger(c, h.logger).With(zap.String("provider", name))

		origin := c.GetHeader("Origin")
		if !h.allowed[origin] {
			reqLogger.Warn("Proxy request from disallowed origin", zap.String("origin", origin))
			c.JSON(http.StatusForbidden, gin.H{"error": "origin not allowed"})
			return
		}

		latRaw, lonRaw := strings.TrimSpace(c.Query("lat")), strings.TrimSpace(c.Query("lon"))
		if latRaw == "" || lonRaw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
			return
		}
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr != nil || lonErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon must be numbers"})
			return
		}
		coords, err := weather.NewCoordinates(lat, lon, "")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		fetcher, ok := h.fetchers[name]
		if !ok {
			reqLogger.Error("Proxy provider not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch data from " + name})
			return
		}

		body, err := fetcher.FetchRaw(ctx, coords)
		if err != nil {
			reqLogger.Error("Proxy upstream request failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch data from " + name})
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Data(http.StatusOK, "application/json", body)
	}
}
