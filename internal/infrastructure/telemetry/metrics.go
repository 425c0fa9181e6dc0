package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled           bool
	CollectorEndpoint string
	ExportInterval    time.Duration
	ServiceName       string
	Insecure          bool
}

// MeterProvider wraps the SDK MeterProvider with lifecycle management.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

// NewMeterProvider creates the provider and installs it globally.
// A disabled config keeps the global no-op meter.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{logger: logger}
	if !cfg.Enabled {
		logger.Info("Metrics disabled")
		return mp, nil
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Info("Metrics initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

// Shutdown flushes pending metrics
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	mp.logger.Info("Meter provider shut down")
	return nil
}

// Meter returns a named meter
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// Metric attribute keys
var (
	AttrPaymentSource = attribute.Key("payment_source")
	AttrGuest         = attribute.Key("guest")
	AttrOutcome       = attribute.Key("outcome")
	AttrErrorCode     = attribute.Key("error_code")
)

// StorefrontMetrics holds the instruments of the storefront services.
// A nil *StorefrontMetrics records nothing.
type StorefrontMetrics struct {
	cartContexts     metric.Int64Counter
	cartContextTime  metric.Float64Histogram
	logins           metric.Int64Counter
	shopReads        metric.Int64Counter
	shopReadBatch    metric.Int64Histogram
	shopReadsMissing metric.Int64Counter
}

// NewStorefrontMetrics creates the storefront instruments on meter
func NewStorefrontMetrics(meter metric.Meter) (*StorefrontMetrics, error) {
	m := &StorefrontMetrics{}
	var err error

	if m.cartContexts, err = meter.Int64Counter("storefront.cart_context.resolutions",
		metric.WithDescription("Cart contexts resolved"),
		metric.WithUnit("{resolution}"),
	); err != nil {
		return nil, fmt.Errorf("create cart context counter: %w", err)
	}
	if m.cartContextTime, err = meter.Float64Histogram("storefront.cart_context.duration",
		metric.WithDescription("Time to resolve a cart context"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, fmt.Errorf("create cart context histogram: %w", err)
	}
	if m.logins, err = meter.Int64Counter("storefront.account.logins",
		metric.WithDescription("Login attempts"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("create login counter: %w", err)
	}
	if m.shopReads, err = meter.Int64Counter("storefront.shop_reader.reads",
		metric.WithDescription("Shop reader batches"),
		metric.WithUnit("{batch}"),
	); err != nil {
		return nil, fmt.Errorf("create shop read counter: %w", err)
	}
	if m.shopReadBatch, err = meter.Int64Histogram("storefront.shop_reader.batch_size",
		metric.WithDescription("Shop ids requested per batch"),
		metric.WithUnit("{shop}"),
	); err != nil {
		return nil, fmt.Errorf("create shop batch histogram: %w", err)
	}
	if m.shopReadsMissing, err = meter.Int64Counter("storefront.shop_reader.missing",
		metric.WithDescription("Requested shop ids that did not resolve"),
		metric.WithUnit("{shop}"),
	); err != nil {
		return nil, fmt.Errorf("create missing shop counter: %w", err)
	}
	return m, nil
}

// RecordCartContext records a resolution. errorCode is empty on success.
func (m *StorefrontMetrics) RecordCartContext(ctx context.Context, paymentSource string, guest bool, errorCode string, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if errorCode != "" {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		AttrPaymentSource.String(paymentSource),
		AttrGuest.Bool(guest),
		AttrOutcome.String(outcome),
		AttrErrorCode.String(errorCode),
	)
	m.cartContexts.Add(ctx, 1, attrs)
	m.cartContextTime.Record(ctx, float64(d.Microseconds())/1000, attrs)
}

// RecordLogin records a login attempt
func (m *StorefrontMetrics) RecordLogin(ctx context.Context, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

// RecordShopRead records a shop reader batch of requested ids of which found resolved
func (m *StorefrontMetrics) RecordShopRead(ctx context.Context, requested, found int) {
	if m == nil {
		return
	}
	m.shopReads.Add(ctx, 1)
	m.shopReadBatch.Record(ctx, int64(requested))
	if missing := requested - found; missing > 0 {
		m.shopReadsMissing.Add(ctx, int64(missing))
	}
}
