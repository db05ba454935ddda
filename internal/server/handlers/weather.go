package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-compare/internal/aggregator"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/server/utils"
	"github.com/vzahanych/weather-compare/internal/weather"
	"go.uber.org/zap"
)

// Geocoder resolves a city name to coordinates.
type Geocoder interface {
	Search(ctx context.Context, name string) (weather.Coordinates, error)
}

type WeatherHandler struct {
	aggregator aggregator.Fetcher
	geocoder   Geocoder
	logger     *zap.Logger
}

func NewWeatherHandler(agg aggregator.Fetcher, geocoder Geocoder, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		aggregator: agg,
		geocoder:   geocoder,
		logger:     logger,
	}
}

func (h *WeatherHandler) GetWeather(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := utils.RequestLogger(c, h.logger)

	var req WeatherRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		reqLogger.Warn("Invalid request parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		c.JSON(http.StatusBadRequest, validationErrorResponse(verrs))
		return
	}

	var coords weather.Coordinates
	if city := strings.TrimSpace(req.City); city != "" {
		found, ok := h.geocode(ctx, c, reqLogger, city)
		if !ok {
			return
		}
		coords = found
	} else {
		parsed, ok := bindCoordinates(c, req.Lat, req.Lon)
		if !ok {
			return
		}
		coords = parsed
		coords.Name = strings.TrimSpace(req.Name)
	}

	names := splitProviders(req.Providers)

	reqLogger.Info("Processing weather request",
		zap.Float64("lat", coords.Lat),
		zap.Float64("lon", coords.Lon),
		zap.Strings("providers", names))

	result, err := h.aggregator.Fetch(ctx, coords, names)
	switch {
	case errors.Is(err, aggregator.ErrUnknownProvider):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Unknown provider",
			Code:    "UNKNOWN_PROVIDER",
			Details: err.Error(),
		})
		return
	case errors.Is(err, aggregator.ErrAllProvidersFailed):
		reqLogger.Error("Failed to get weather data", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: aggregator.ErrAllProvidersFailed.Error(),
			Code:  "AGGREGATION_ERROR",
		})
		return
	case err != nil:
		reqLogger.Error("Failed to get weather data", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   aggregator.ErrAllProvidersFailed.Error(),
			Code:    "AGGREGATION_ERROR",
			Details: err.Error(),
		})
		return
	}

	response := toWeatherResponse(result)
	reqLogger.Info("Weather request completed successfully",
		zap.Int("providers_count", len(response.Providers)),
		zap.Int("errors_count", len(response.Errors)))

	c.JSON(http.StatusOK, response)
}

// geocode writes the error response itself and reports whether coords is usable.
func (h *WeatherHandler) geocode(ctx context.Context, c *gin.Context, log *zap.Logger, city string) (weather.Coordinates, bool) {
	if h.geocoder == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "City search is not available", Code: "INVALID_PARAMS"})
		return weather.Coordinates{}, false
	}

	coords, err := h.geocoder.Search(ctx, city)
	switch {
	case err == nil:
		return coords, true
	case errors.Is(err, provider.ErrCityNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "City not found", Code: "CITY_NOT_FOUND", Details: city})
	case errors.Is(err, provider.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "City is required", Code: "INVALID_PARAMS"})
	default:
		log.Error("Geocoding failed", zap.String("city", city), zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to search city", Code: "GEOCODING_ERROR", Details: err.Error()})
	}
	return weather.Coordinates{}, false
}

// bindCoordinates parses and validates lat/lon query values, writing a 400
// response on failure.
func bindCoordinates(c *gin.Context, latRaw, lonRaw string) (weather.Coordinates, bool) {
	latRaw, lonRaw = strings.TrimSpace(latRaw), strings.TrimSpace(lonRaw)
	if latRaw == "" || lonRaw == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "lat and lon are required",
			Code:  "INVALID_PARAMS",
		})
		return weather.Coordinates{}, false
	}

	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lon, lonErr := strconv.ParseFloat(lonRaw, 64)
	if err := errors.Join(latErr, lonErr); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "lat and lon must be numbers",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return weather.Coordinates{}, false
	}

	if verrs := utils.ValidateStruct(CoordinatesQuery{Lat: lat, Lon: lon}); verrs != nil {
		c.JSON(http.StatusBadRequest, validationErrorResponse(verrs))
		return weather.Coordinates{}, false
	}

	return weather.Coordinates{Lat: lat, Lon: lon}, true
}

func validationErrorResponse(verrs []utils.ValidationError) ErrorResponse {
	msgs := make([]string, 0, len(verrs))
	for _, v := range verrs {
		msgs = append(msgs, v.Message)
	}
	return ErrorResponse{
		Error:   "Invalid request parameters",
		Code:    "INVALID_PARAMS",
		Details: strings.Join(msgs, "; "),
	}
}

func splitProviders(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(raw, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func toWeatherResponse(result *aggregator.Result) WeatherResponse {
	resp := WeatherResponse{
		Location:  result.Location,
		Providers: make(map[string]*ProviderWeather, len(result.Providers)),
		Errors:    result.Errors,
		FetchedAt: result.FetchedAt.Format(time.RFC3339),
	}
	for name, data := range result.Providers {
		if data == nil {
			resp.Providers[name] = nil
			continue
		}
		resp.Providers[name] = &ProviderWeather{
			NormalizedWeather: data,
			Icon:              weather.Describe(data.Current.WeatherCode).Icon,
			Background:        weather.Background(data.Current.WeatherCode),
		}
	}
	if len(resp.Errors) == 0 {
		resp.Errors = nil
	}
	return resp
}
