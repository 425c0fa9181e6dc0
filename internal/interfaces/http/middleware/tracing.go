package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig configures the server span middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// SkipPrefixes are paths that get no span, e.g. health probes.
	SkipPrefixes []string
}

// Tracing starts a server span per request via otelgin. Span names follow
// "METHOD route", e.g. "POST /api/v1/shops/batch".
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	skip := cfg.SkipPrefixes
	return otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
		for _, prefix := range skip {
			if strings.HasPrefix(r.URL.Path, prefix) {
				return false
			}
		}
		return true
	}))
}

// AnnotateSpan copies the request and session ids onto the server span.
// It belongs after Tracing, RequestID and Session.
func AnnotateSpan() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			attrs := make([]attribute.KeyValue, 0, 2)
			if id := GetRequestID(c); id != "" {
				attrs = append(attrs, attribute.String("request_id", id))
			}
			if id := GetSessionID(c); id != "" {
				attrs = append(attrs, attribute.String("session_id", id))
			}
			span.SetAttributes(attrs...)
		}
		c.Next()
	}
}

// MarkSpanErrors sets an error status on the server span for 4xx and 5xx
// answers and records errors the handlers attached with c.Error.
func MarkSpanErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		for _, err := range c.Errors {
			span.RecordError(err.Err)
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
