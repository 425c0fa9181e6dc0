package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// gin context keys shared with the request id middleware
const (
	ginRequestIDKey = "request_id"
	ginLoggerKey    = "logger"
)

// AccessLogConfig configures GinMiddlewareWithConfig
type AccessLogConfig struct {
	Logger *zap.Logger
	// SkipPaths are logged only when they fail, e.g. health probes.
	SkipPaths []string
	// SlowThreshold raises slow successful requests to warn. Zero disables.
	SlowThreshold time.Duration
}

// GinMiddleware logs every request
func GinMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return GinMiddlewareWithConfig(AccessLogConfig{Logger: logger})
}

// GinMiddlewareWithConfig stores a request scoped logger in the gin and the
// request context and writes one access log entry per request. The entry
// carries what later middleware added to the request context, such as the
// session id.
func GinMiddlewareWithConfig(cfg AccessLogConfig) gin.HandlerFunc {
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		ctx := WithContext(req.Context(), cfg.Logger.With(
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		))
		if requestID := c.GetString(ginRequestIDKey); requestID != "" {
			ctx = WithRequestID(ctx, requestID)
		}
		c.Request = req.WithContext(ctx)
		c.Set(ginLoggerKey, ctx.Value(loggerKey))

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		if skip[req.URL.Path] && status < http.StatusBadRequest {
			return
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if req.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", req.URL.RawQuery))
		}
		if route := c.FullPath(); route != "" {
			fields = append(fields, zap.String("route", route))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		l := FromContext(c.Request.Context())
		if ce := l.Check(accessLevel(status, latency, cfg.SlowThreshold), "HTTP Request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func accessLevel(status int, latency, slow time.Duration) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case slow > 0 && latency > slow:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Recovery turns a panic into a logged 500
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered",
					zap.String("request_id", c.GetString(ginRequestIDKey)),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// GetGinLogger returns the request logger stored by the access log
// middleware, or a no-op logger
func GetGinLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := l.(*zap.Logger); ok {
			return zl
		}
	}
	return zap.NewNop()
}
