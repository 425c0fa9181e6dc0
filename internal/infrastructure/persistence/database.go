package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the GORM handle of the storefront and its connection pool
type Database struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// NewDatabase opens a connection for the configured driver. gormLogger may be
// nil, in which case GORM logging is silent.
func NewDatabase(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver == "postgres",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, sqlDB: sqlDB}, nil
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		return postgres.Open(cfg.DSN()), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.sqlDB.Close()
}

// PingContext checks the connection within the deadline of ctx
func (d *Database) PingContext(ctx context.Context) error {
	return d.sqlDB.PingContext(ctx)
}

// RegisterPoolMetrics reports the connection pool state as gauges on every
// collection. Unregister the returned registration before closing.
func (d *Database) RegisterPoolMetrics(meter metric.Meter) (metric.Registration, error) {
	open, err := meter.Int64ObservableGauge("db.client.connections.open",
		metric.WithDescription("Open connections by state"))
	if err != nil {
		return nil, fmt.Errorf("failed to create pool gauge: %w", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("db.client.connections.max",
		metric.WithDescription("Configured connection limit"))
	if err != nil {
		return nil, fmt.Errorf("failed to create pool gauge: %w", err)
	}
	waits, err := meter.Int64ObservableCounter("db.client.connections.waits",
		metric.WithDescription("Times a caller waited for a free connection"))
	if err != nil {
		return nil, fmt.Errorf("failed to create pool counter: %w", err)
	}

	inUse := metric.WithAttributes(attribute.String("state", "used"))
	idle := metric.WithAttributes(attribute.String("state", "idle"))
	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := d.sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.InUse), inUse)
		o.ObserveInt64(open, int64(stats.Idle), idle)
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, maxOpen, waits)
}

// usesPostgres reports whether db talks to PostgreSQL
func usesPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}
