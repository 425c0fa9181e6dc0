package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// UnmatchedRoute labels requests that did not hit a registered route
const UnmatchedRoute = "unmatched"

// ProfilingConfig holds configuration for the profiling middleware
type ProfilingConfig struct {
	Enabled bool
	// SkipPrefixes are path prefixes served without labels, e.g. "/health"
	// also covers "/health/ready".
	SkipPrefixes []string
}

// ProfilingWithConfig attaches Pyroscope labels (controller, route, method)
// to the request context so CPU profiles can be sliced per storefront endpoint.
// Routes are labelled by their pattern, never by the raw path, so product ids
// do not explode label cardinality.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if hasAnyPrefix(c.Request.URL.Path, cfg.SkipPrefixes) {
			c.Next()
			return
		}

		telemetry.WithProfilingLabels(c.Request.Context(), profilingLabels(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) map[string]string {
	route := c.FullPath()
	if route == "" {
		route = UnmatchedRoute
	}
	return map[string]string{
		telemetry.ProfilingLabelMethod:     c.Request.Method,
		telemetry.ProfilingLabelRoute:      route,
		telemetry.ProfilingLabelController: controllerOf(route),
	}
}

// controllerOf returns the first static segment after the version prefix:
// "/api/v1/products/:id/configurator" -> "products"
func controllerOf(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
