package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func corsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/weather", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func preflight(r http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/weather", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORSPreflightAllowedOrigin(t *testing.T) {
	w := preflight(corsRouter(), "http://localhost:3000")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), RequestIDHeader)
}

func TestCORSPreflightRejectsOtherOrigins(t *testing.T) {
	w := preflight(corsRouter(), "https://evil.example")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSOptionsWithoutOriginIsRouted(t *testing.T) {
	w := preflight(corsRouter(), "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSSimpleRequest(t *testing.T) {
	r := corsRouter()

	req := httptest.NewRequest(http.MethodGet, "/weather", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
