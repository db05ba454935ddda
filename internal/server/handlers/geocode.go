package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-compare/internal/provider"
	"github.com/vzahanych/weather-compare/internal/server/utils"
	"go.uber.org/zap"
)

type GeocodeHandler struct {
	geocoder Geocoder
	logger   *zap.Logger
}

func NewGeocodeHandler(geocoder Geocoder, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{
		geocoder: geocoder,
		logger:   logger,
	}
}

func (h *GeocodeHandler) Search(c *gin.Context) {
	ctx := utils.GetContextFromGinContext(c)
	reqLogger := utils.RequestLogger(c, h.logger)

	name := c.Query("name")
	coords, err := h.geocoder.Search(ctx, name)
	switch {
	case errors.Is(err, provider.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required", Code: "INVALID_PARAMS"})
	case errors.Is(err, provider.ErrCityNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "City not found", Code: "CITY_NOT_FOUND", Details: name})
	case err != nil:
		reqLogger.Error("Geocoding failed", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to search city", Code: "GEOCODING_ERROR", Details: err.Error()})
	default:
		c.JSON(http.StatusOK, GeocodeResponse{Name: coords.Name, Lat: coords.Lat, Lon: coords.Lon})
	}
}
