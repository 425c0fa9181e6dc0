package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNew(t *testing.T) {
	t.Run("writes json to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		log, err := New(Config{Level: "debug", Format: "json", Output: path, Fields: map[string]string{"service": "storefront"}})
		require.NoError(t, err)

		log.Info("hello", zap.String("shop", "main"))
		require.NoError(t, log.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello"`)
		assert.Contains(t, string(data), `"shop":"main"`)
		assert.Contains(t, string(data), `"service":"storefront"`)
	})

	t.Run("sampling drops repeated entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sampled.log")
		log, err := New(Config{Format: "json", Output: path, Sampled: true})
		require.NoError(t, err)

		for range 150 {
			log.Info("cart context resolved")
		}
		require.NoError(t, log.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 100, strings.Count(string(data), "cart context resolved"))
	})

	t.Run("tees to extra cores", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		log, err := New(Config{Level: "info", Format: "json", Output: "stderr"}, core)
		require.NoError(t, err)

		log.Info("bridged")
		assert.Equal(t, 1, logs.FilterMessage("bridged").Len())
	})

	t.Run("fails for unwritable file", func(t *testing.T) {
		_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
		assert.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestContextHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := WithContext(context.Background(), base)
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithSessionID(ctx, "sess-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "sess-1", GetSessionID(ctx))

	FromContext(ctx).Info("resolved")
	entry := logs.All()[0]
	assert.Equal(t, "req-1", entry.ContextMap()["request_id"])
	assert.Equal(t, "sess-1", entry.ContextMap()["session_id"])

	t.Run("no logger yields nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
		assert.Equal(t, "", GetRequestID(context.Background()))
	})

	t.Run("trace ids are attached for valid spans", func(t *testing.T) {
		traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
		spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID})
		tctx := trace.ContextWithSpanContext(ctx, spanCtx)

		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(tctx))
		FromContext(tctx).Info("traced")
		last := logs.FilterMessage("traced").All()[0]
		assert.Equal(t, "00f067aa0ba902b7", last.ContextMap()["span_id"])
	})
}

func TestGinMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	router.Use(GinMiddlewareWithConfig(AccessLogConfig{
		Logger:        zap.New(core),
		SkipPaths:     []string{"/health"},
		SlowThreshold: 20 * time.Millisecond,
	}))
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithSessionID(c.Request.Context(), "sess-7"))
		c.Next()
	})
	router.GET("/shops/:id", func(c *gin.Context) {
		assert.Equal(t, "req-42", GetRequestID(c.Request.Context()))
		GetGinLogger(c).Debug("handler")
		c.Status(http.StatusOK)
	})
	router.GET("/missing", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})
	router.GET("/slow", func(c *gin.Context) {
		time.Sleep(30 * time.Millisecond)
		c.Status(http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/shops/3?fields=all", "/missing", "/slow", "/health"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 3, "successful probes are not logged")

	first := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-42", first["request_id"])
	assert.Equal(t, "sess-7", first["session_id"])
	assert.Equal(t, "/shops/:id", first["route"])
	assert.Equal(t, "fields=all", first["query"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level, "slow request")

	handlerEntry := logs.FilterMessage("handler").All()
	require.Len(t, handlerEntry, 1)
	assert.Equal(t, "/shops/3", handlerEntry[0].ContextMap()["path"])
}

func TestAccessLevel(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, accessLevel(http.StatusOK, time.Second, 0))
	assert.Equal(t, zapcore.WarnLevel, accessLevel(http.StatusOK, time.Second, 500*time.Millisecond))
	assert.Equal(t, zapcore.WarnLevel, accessLevel(http.StatusConflict, 0, 0))
	assert.Equal(t, zapcore.ErrorLevel, accessLevel(http.StatusBadGateway, 0, 0))
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
	sql := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	gl.Trace(ctx, time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len(), "fast queries are not logged at warn level")

	gl.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Equal(t, 1, logs.FilterMessage("Slow SQL").Len())

	gl.Trace(ctx, time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.FilterMessage("SQL Error").Len(), "missing rows are not errors")

	gl.Trace(ctx, time.Now(), sql, errors.New("syntax error"))
	assert.Equal(t, 1, logs.FilterMessage("SQL Error").Len())

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 1, logs.FilterMessage("SQL Error").Len())
}

func TestGormLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, WithMaxSQLLength(24))

	ids := make([]string, 0, 50)
	for i := 1; i <= 50; i++ {
		ids = append(ids, strconv.Itoa(i))
	}
	long := "SELECT * FROM shops WHERE id IN (" + strings.Join(ids, ",") + ")"
	ctx := WithSessionID(WithRequestID(context.Background(), "req-1"), "sess-1")

	gl.Trace(ctx, time.Now(), func() (string, int64) { return long, 50 }, nil)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "SELECT * FROM shops WHER...(truncated)", fields["sql"])
	assert.Equal(t, int64(50), fields["rows"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "sess-1", fields["session_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("whatever"))
}
