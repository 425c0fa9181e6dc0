// Package integration runs the storefront against a real PostgreSQL database
// started with testcontainers.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/storefront/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const postgresImage = "postgres:16-alpine"

// postgres is the container every test in the package connects to. It is
// started and migrated on first use and stopped by TestMain.
var postgres struct {
	mu        sync.Mutex
	container *tcpostgres.PostgresContainer
	dsn       string
}

// TestDB is one test's connection to the shared, migrated database
type TestDB struct {
	DB  *gorm.DB
	DSN string
	t   *testing.T
}

// OpenTestDB connects to the package database, starting it on first use
func OpenTestDB(t *testing.T) *TestDB {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	dsn := postgresDSN(t)
	logLevel := gormlogger.Silent
	if os.Getenv("TEST_DB_DEBUG") != "" {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(logLevel),
	})
	require.NoError(t, err, "connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &TestDB{DB: db, DSN: dsn, t: t}
}

func postgresDSN(t *testing.T) string {
	t.Helper()

	postgres.mu.Lock()
	defer postgres.mu.Unlock()
	if postgres.container != nil {
		return postgres.dsn
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, postgresImage,
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("storefront"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migration.NewFromURL(dsn, migrationsDir(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.Up(), "apply migrations")

	postgres.container, postgres.dsn = container, dsn
	return dsn
}

// StopPostgres terminates the package database, if it was started
func StopPostgres() {
	postgres.mu.Lock()
	defer postgres.mu.Unlock()
	if postgres.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = postgres.container.Terminate(ctx)
	postgres.container, postgres.dsn = nil, ""
}

// Reset empties every storefront table in one statement and restarts the
// id sequences
func (tdb *TestDB) Reset() {
	tdb.t.Helper()

	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(
		`SELECT quote_ident(tablename) FROM pg_tables WHERE schemaname = 'public' AND tablename <> 'schema_migrations'`,
	).Scan(&tables).Error)
	if len(tables) == 0 {
		return
	}
	require.NoError(tdb.t, tdb.DB.Exec(
		"TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE",
	).Error)
}

// Seed executes fixture scripts in order
func (tdb *TestDB) Seed(scripts ...string) {
	tdb.t.Helper()
	for _, script := range scripts {
		require.NoError(tdb.t, tdb.DB.Exec(script).Error, "seed fixtures")
	}
}

// migrationsDir finds the repository migrations directory above this file
func migrationsDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	for dir := filepath.Dir(file); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	t.Fatal("migrations directory not found")
	return ""
}
