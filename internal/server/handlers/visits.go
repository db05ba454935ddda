package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-compare/internal/counter"
	"github.com/vzahanych/weather-compare/internal/server/utils"
	"go.uber.org/zap"
)

type VisitsHandler struct {
	counter counter.Counter
	logger  *zap.Logger
}

func NewVisitsHandler(c counter.Counter, logger *zap.Logger) *VisitsHandler {
	return &VisitsHandler{
		counter: c,
		logger:  logger,
	}
}

// Visit counts a page load and returns the new total.
func (h *VisitsHandler) Visit(c *gin.Context) {
	n, err := h.counter.Increment(utils.GetContextFromGinContext(c))
	if err != nil {
		utils.RequestLogger(c, h.logger).Error("Failed to increment visit counter", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to count visit", Code: "COUNTER_ERROR"})
		return
	}
	c.JSON(http.StatusOK, VisitsResponse{Count: n})
}

// Current returns the total without counting.
func (h *VisitsHandler) Current(c *gin.Context) {
	n, err := h.counter.Current(utils.GetContextFromGinContext(c))
	if err != nil {
		utils.RequestLogger(c, h.logger).Error("Failed to read visit counter", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to read visits", Code: "COUNTER_ERROR"})
		return
	}
	c.JSON(http.StatusOK, VisitsResponse{Count: n})
}
