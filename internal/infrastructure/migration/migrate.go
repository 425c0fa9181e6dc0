package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator applies the storefront schema with golang-migrate
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

// Status describes the schema version of a database
type Status struct {
	Version uint
	Dirty   bool
	Pending []string
}

// New creates a Migrator on an open connection. driver is "postgres" or "sqlite".
func New(db *sql.DB, driver, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	var (
		instance database.Driver
		name     string
		err      error
	)
	switch driver {
	case "postgres":
		name = "postgres"
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	case "sqlite":
		name = "sqlite3"
		instance, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("unsupported migration driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s migration driver: %w", driver, err)
	}

	return open(logger, func(source string) (*migrate.Migrate, error) {
		return migrate.NewWithDatabaseInstance(source, name, instance)
	}, migrationsPath)
}

// NewFromURL creates a Migrator from a database URL such as postgres://...
func NewFromURL(databaseURL, migrationsPath string, logger *zap.Logger) (*Migrator, error) {
	return open(logger, func(source string) (*migrate.Migrate, error) {
		return migrate.New(source, databaseURL)
	}, migrationsPath)
}

func open(logger *zap.Logger, newMigrate func(source string) (*migrate.Migrate, error), migrationsPath string) (*Migrator, error) {
	abs, err := filepath.Abs(migrationsPath)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations path: %w", err)
	}
	m, err := newMigrate("file://" + filepath.ToSlash(abs))
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	m.Log = migrateLogger{logger.Named("migrate")}
	return &Migrator{migrate: m, logger: logger}, nil
}

// migrateLogger routes golang-migrate's progress lines to zap at debug level
type migrateLogger struct {
	logger *zap.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.logger.Core().Enabled(zap.DebugLevel)
}

// Up applies all pending migrations
func (m *Migrator) Up() error {
	return m.run("up", m.migrate.Up)
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	return m.run("down", m.migrate.Down)
}

// Steps applies n migrations, rolling back when n is negative
func (m *Migrator) Steps(n int) error {
	return m.run(fmt.Sprintf("steps %+d", n), func() error { return m.migrate.Steps(n) })
}

// run executes op and logs the resulting version. ErrNoChange is not an error.
func (m *Migrator) run(op string, fn func() error) error {
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		m.logger.Info("Schema already up to date", zap.String("op", op))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", op, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	m.logger.Info("Migrations applied",
		zap.String("op", op),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Version returns the applied version, 0 when nothing was applied
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.migrate.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

// Status reports the applied version and the migrations in migrationsDir
// newer than it
func (m *Migrator) Status(migrationsDir string) (*Status, error) {
	version, dirty, err := m.Version()
	if err != nil {
		return nil, err
	}
	names, err := ListMigrations(migrationsDir)
	if err != nil {
		return nil, err
	}

	status := &Status{Version: version, Dirty: dirty}
	for _, name := range names {
		if v, ok := parseVersion(name); ok && v > version {
			status.Pending = append(status.Pending, name)
		}
	}
	return status, nil
}

// Force records version as applied and clears the dirty flag without
// running anything
func (m *Migrator) Force(version int) error {
	if err := m.migrate.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	m.logger.Warn("Migration version forced", zap.Int("version", version))
	return nil
}

// Close releases the source and the database driver
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()
	return errors.Join(sourceErr, dbErr)
}
