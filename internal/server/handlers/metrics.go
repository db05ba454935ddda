package handlers

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/weather-compare/internal/server/middlewares"
	"go.uber.org/zap"
)

// HTTPMetricsSource exposes request metrics collected by the metrics middleware.
type HTTPMetricsSource interface {
	Snapshot() middlewares.HTTPSnapshot
}

// AppMetrics holds application-level metrics
type AppMetrics struct {
	mutex                sync.RWMutex
	weatherServiceCalls  map[string]int64
	weatherServiceErrors map[string]int64
}

type MetricsHandler struct {
	logger     *zap.Logger
	http       HTTPMetricsSource
	appMetrics *AppMetrics
}

func NewMetricsHandler(logger *zap.Logger, httpMetrics HTTPMetricsSource) *MetricsHandler {
	return &MetricsHandler{
		logger: logger,
		http:   httpMetrics,
		appMetrics: &AppMetrics{
			weatherServiceCalls:  make(map[string]int64),
			weatherServiceErrors: make(map[string]int64),
		},
	}
}

// RecordWeatherServiceCall records a weather provider call
func (h *MetricsHandler) RecordWeatherServiceCall(ctx context.Context, service string, success bool) {
	h.appMetrics.mutex.Lock()
	h.appMetrics.weatherServiceCalls[service]++
	if !success {
		h.appMetrics.weatherServiceErrors[service]++
	}
	h.appMetrics.mutex.Unlock()
}

// ServeMetrics exposes metrics in the Prometheus text format
func (h *MetricsHandler) ServeMetrics(c *gin.Context) {
	var b strings.Builder

	if h.http != nil {
		snap := h.http.Snapshot()

		b.WriteString("# HELP http_requests_total Total number of HTTP requests\n")
		b.WriteString("# TYPE http_requests_total counter\n")
		for _, key := range sortedKeys(snap.RequestsTotal) {
			b.WriteString("http_requests_total{route_status=\"" + key + "\"} " + strconv.FormatInt(snap.RequestsTotal[key], 10) + "\n")
		}

		b.WriteString("\n# HELP http_request_duration_seconds_avg Average duration of HTTP requests\n")
		b.WriteString("# TYPE http_request_duration_seconds_avg gauge\n")
		b.WriteString("http_request_duration_seconds_avg " + strconv.FormatFloat(snap.AvgDurationSeconds, 'f', 6, 64) + "\n")

		b.WriteString("\n# HELP http_active_requests Number of active HTTP requests\n")
		b.WriteString("# TYPE http_active_requests gauge\n")
		b.WriteString("http_active_requests " + strconv.FormatInt(snap.ActiveRequests, 10) + "\n\n")
	}

	h.appMetrics.mutex.RLock()
	defer h.appMetrics.mutex.RUnlock()

	b.WriteString("# HELP weather_service_calls_total Total weather provider calls\n")
	b.WriteString("# TYPE weather_service_calls_total counter\n")
	for _, service := range sortedKeys(h.appMetrics.weatherServiceCalls) {
		b.WriteString("weather_service_calls_total{service=\"" + service + "\"} " + strconv.FormatInt(h.appMetrics.weatherServiceCalls[service], 10) + "\n")
	}

	b.WriteString("\n# HELP weather_service_errors_total Total weather provider errors\n")
	b.WriteString("# TYPE weather_service_errors_total counter\n")
	for _, service := range sortedKeys(h.appMetrics.weatherServiceErrors) {
		b.WriteString("weather_service_errors_total{service=\"" + service + "\"} " + strconv.FormatInt(h.appMetrics.weatherServiceErrors[service], 10) + "\n")
	}

	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.String(200, b.String())
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
