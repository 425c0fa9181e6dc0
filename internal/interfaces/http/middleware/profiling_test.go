package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
)

type capturedLabels struct {
	route, controller, method string
	labelled                  bool
}

func captureLabels(into *capturedLabels) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		into.route, into.labelled = pprof.Label(ctx, telemetry.ProfilingLabelRoute)
		into.controller, _ = pprof.Label(ctx, telemetry.ProfilingLabelController)
		into.method, _ = pprof.Label(ctx, telemetry.ProfilingLabelMethod)
		c.Status(http.StatusOK)
	}
}

func TestProfilingMiddleware(t *testing.T) {
	enabled := ProfilingConfig{Enabled: true, SkipPrefixes: []string{"/health"}}

	t.Run("disabled adds no labels", func(t *testing.T) {
		var got capturedLabels
		r := gin.New()
		r.Use(ProfilingWithConfig(ProfilingConfig{}))
		r.GET("/api/v1/shops", captureLabels(&got))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/shops", nil))
		assert.False(t, got.labelled)
	})

	t.Run("labels by route pattern", func(t *testing.T) {
		var got capturedLabels
		r := gin.New()
		r.Use(ProfilingWithConfig(enabled))
		r.POST("/api/v1/products/:id/configurator", captureLabels(&got))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/products/7/configurator", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/api/v1/products/:id/configurator", got.route)
		assert.Equal(t, "products", got.controller)
		assert.Equal(t, http.MethodPost, got.method)
	})

	t.Run("skips health probes by prefix", func(t *testing.T) {
		var got capturedLabels
		r := gin.New()
		r.Use(ProfilingWithConfig(enabled))
		r.GET("/health/ready", captureLabels(&got))

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.False(t, got.labelled)
	})

	t.Run("unmatched routes share one label", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/nope/42", nil)

		labels := profilingLabels(c)
		assert.Equal(t, UnmatchedRoute, labels[telemetry.ProfilingLabelRoute])
		assert.Equal(t, UnmatchedRoute, labels[telemetry.ProfilingLabelController])
	})
}

func TestControllerOf(t *testing.T) {
	tests := map[string]string{
		"/api/v1/shops":                     "shops",
		"/api/v1/products/:id/configurator": "products",
		"/api/v2/checkout/context":          "checkout",
		"/health":                           "health",
		"":                                  "",
	}
	for route, want := range tests {
		assert.Equal(t, want, controllerOf(route), route)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("shops"))
}
