package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

//	@title			Storefront Backend API
//	@version		1.0
//	@description	Shop context, checkout session and catalog reads of the storefront

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Fields:  map[string]string{"service": cfg.Telemetry.ServiceName, "env": cfg.App.Env},
		Sampled: cfg.IsProduction(),
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// OTLP log export feeds a second zap core, so it comes before the real logger
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log exporter", zap.Error(err))
	}

	log := bootLog
	if logProvider.IsEnabled() {
		log, err = logger.New(logCfg, logProvider.ZapCore(logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			bootLog.Fatal("Failed to initialize logger", zap.Error(err))
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeEndpoint,
		ApplicationName: cfg.Telemetry.ServiceName,
		Tags:            map[string]string{"env": cfg.App.Env},
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Telemetry.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	storefrontMetrics, err := telemetry.NewStorefrontMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create storefront metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	poolMetrics, err := db.RegisterPoolMetrics(meter)
	if err != nil {
		log.Fatal("Failed to register connection pool metrics", zap.Error(err))
	}
	defer func() {
		_ = poolMetrics.Unregister()
	}()

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.SlowQueryThresh = cfg.Database.SlowThreshold
	if cfg.Database.Driver == "sqlite" {
		dbTracing.DBSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Session store
	sessionStore, err := cache.NewSessionStoreFactory(cfg.Redis, cfg.Session,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateStore()
	if err != nil {
		log.Fatal("Failed to create session store", zap.Error(err))
	}
	defer func() {
		if err := sessionStore.Close(); err != nil {
			log.Error("Error closing session store", zap.Error(err))
		}
	}()

	// Gateways and readers
	mediaResolver, err := storage.NewMediaURLResolver(&cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to create media resolver", zap.Error(err))
	}
	shopReader := persistence.NewGormShopReader(db.DB, persistence.NewShopHydrator(mediaResolver))
	pageReader := persistence.NewGormShopPageReader(db.DB)
	configuratorRepo := persistence.NewGormConfiguratorRepository(db.DB)

	// Application services
	shopContexts := storefront.NewShopContextService(shopReader, cfg.Storefront.DefaultShopID, storefrontMetrics, log)
	checkoutDeps := checkoutapp.Dependencies{
		ShopContexts: shopContexts,
		Customers:    persistence.NewGormCustomerGateway(db.DB),
		Addresses:    persistence.NewGormAddressGateway(db.DB),
		Deliveries:   persistence.NewGormDeliveryMethodGateway(db.DB),
		Payments:     persistence.NewGormPaymentMethodGateway(db.DB),
		Config: checkoutapp.Config{
			DefaultDispatchID: cfg.Checkout.DefaultDispatchID,
			DefaultPaymentID:  cfg.Checkout.DefaultPaymentID,
		},
		Metrics: storefrontMetrics,
		Logger:  log,
	}
	sessionService := checkoutapp.NewSessionService(sessionStore, checkoutDeps, shopReader, auth.NewPasswordHasher(bcrypt.DefaultCost))

	// HTTP handlers
	scope := handler.NewSessionScope(sessionService, shopContexts, cfg.Storefront.MaxBatchSize)
	handlers := router.StorefrontHandlers{
		Checkout:     handler.NewCheckoutHandler(sessionService, checkoutDeps),
		Account:      handler.NewAccountHandler(sessionService),
		Shop:         handler.NewShopHandler(scope, sessionService, shopContexts),
		Page:         handler.NewPageHandler(scope, storefront.NewShopPageService(pageReader)),
		Configurator: handler.NewConfiguratorHandler(scope, storefront.NewConfiguratorService(configuratorRepo)),
	}
	healthChecks := map[string]handler.Pinger{"database": db}
	if pinger, ok := sessionStore.(handler.Pinger); ok {
		healthChecks["sessions"] = pinger
	}
	healthHandler := handler.NewHealthHandler(healthChecks)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID and Recovery first so panics are logged with the id
	// 2. Logger, security headers, CORS and body limit
	// 3. Tracing, error marking, HTTP metrics and profiling labels
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddlewareWithConfig(logger.AccessLogConfig{
		Logger:        log,
		SkipPaths:     []string{"/health", "/health/ready"},
		SlowThreshold: cfg.HTTP.SlowRequestThreshold,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName:  cfg.Telemetry.ServiceName,
		Enabled:      cfg.Telemetry.Enabled,
		SkipPrefixes: []string{"/health"},
	}))
	engine.Use(middleware.MarkSpanErrors())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		Meter:   meter,
		Enabled: cfg.Telemetry.MetricsEnabled,
		Logger:  log,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:      profiler.IsEnabled(),
		SkipPrefixes: []string{"/health"},
	}))

	engine.GET("/health", healthHandler.Live)
	engine.GET("/health/ready", healthHandler.Ready)

	var loginGuard []gin.HandlerFunc
	if cfg.HTTP.LoginRateLimit > 0 {
		var loginLimiter middleware.RateLimiter = middleware.NewMemoryRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
		backend := "memory"
		if redisStore, ok := sessionStore.(*cache.RedisSessionStore); ok {
			counter := cache.NewRedisWindowCounter(redisStore.Client(), "storefront:ratelimit:login:")
			loginLimiter = middleware.NewCounterRateLimiter(counter, cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
			backend = "redis"
		}
		loginGuard = append(loginGuard, middleware.RateLimit(loginLimiter))
		log.Info("Login rate limiting enabled",
			zap.Int("requests", cfg.HTTP.LoginRateLimit),
			zap.Duration("window", cfg.HTTP.LoginRateWindow),
			zap.String("backend", backend),
		)
	}

	sessionTokens := auth.NewSessionTokenService(cfg.Session)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(
		middleware.Session(middleware.NewSessionMiddlewareConfig(sessionTokens, cfg.Session, log)),
		middleware.AnnotateSpan(),
	)
	r.Register(router.StorefrontGroups(handlers, loginGuard...)...)
	r.Setup()
	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down metrics", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
