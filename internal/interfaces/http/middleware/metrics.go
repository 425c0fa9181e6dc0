package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Metric attribute keys
var (
	attrHTTPMethod      = attribute.Key("http.method")
	attrHTTPRoute       = attribute.Key("http.route")
	attrHTTPStatusClass = attribute.Key("http.status_class")
)

// httpDurationBuckets are latency bucket boundaries in seconds
var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetricsConfig holds configuration for HTTP metrics middleware.
type HTTPMetricsConfig struct {
	// Meter creates the instruments. Nil disables the middleware.
	Meter   metric.Meter
	Enabled bool
	Logger  *zap.Logger
}

// httpMetrics holds all HTTP-related metrics instruments.
type httpMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	responseSize    metric.Int64Histogram
	activeRequests  metric.Int64UpDownCounter
}

// newHTTPMetrics creates all HTTP metrics instruments from a meter.
func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	m := &httpMetrics{}
	var err error

	if m.requestTotal, err = meter.Int64Counter("http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if m.requestDuration, err = meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency distribution in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(httpDurationBuckets...),
	); err != nil {
		return nil, err
	}
	if m.responseSize, err = meter.Int64Histogram("http_server_response_size_bytes",
		metric.WithDescription("HTTP response body size distribution in bytes"),
		metric.WithUnit("By"),
	); err != nil {
		return nil, err
	}
	if m.activeRequests, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// HTTPMetrics returns a Gin middleware that collects request count, latency,
// response size and in-flight requests per method and route pattern.
func HTTPMetrics(cfg HTTPMetricsConfig) gin.HandlerFunc {
	noop := func(c *gin.Context) { c.Next() }
	if !cfg.Enabled || cfg.Meter == nil {
		return noop
	}

	metrics, err := newHTTPMetrics(cfg.Meter)
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return noop
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		metrics.activeRequests.Add(ctx, 1)
		c.Next()
		metrics.activeRequests.Add(ctx, -1)

		base := metric.WithAttributes(
			attrHTTPMethod.String(c.Request.Method),
			attrHTTPRoute.String(getRoutePattern(c)),
		)
		metrics.requestTotal.Add(ctx, 1, metric.WithAttributes(
			attrHTTPMethod.String(c.Request.Method),
			attrHTTPRoute.String(getRoutePattern(c)),
			attrHTTPStatusClass.String(HTTPMetricsStatusGroup(c.Writer.Status())),
		))
		metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), base)
		if size := c.Writer.Size(); size > 0 {
			metrics.responseSize.Record(ctx, int64(size), base)
		}
	}
}

// getRoutePattern returns the matched route pattern (e.g. "/api/v1/products/:id/configurator")
// rather than the raw path, keeping metric cardinality bounded.
func getRoutePattern(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		return "unknown"
	}
	return route
}

// HTTPMetricsStatusGroup groups status codes by class (2xx, 4xx, 5xx).
func HTTPMetricsStatusGroup(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500:
		return "5xx"
	default:
		return "other"
	}
}
