package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

// cli holds the state shared by all subcommands
type cli struct {
	migrationsPath string
	logLevel       string

	log *zap.Logger
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Storefront database migration tool",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(logger.Config{
				Level:      c.logLevel,
				Format:     "console",
				Output:     "stdout",
				TimeFormat: "2006-01-02 15:04:05",
			})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			c.log = log

			path, err := resolveMigrationsPath(c.migrationsPath)
			if err != nil {
				return err
			}
			c.migrationsPath = path
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.migrationsPath, "path", "", "path to migrations directory (default ./migrations)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		c.upCmd(),
		c.downCmd(),
		c.stepsCmd(),
		c.versionCmd(),
		c.statusCmd(),
		c.forceCmd(),
		c.createCmd(),
		c.listCmd(),
	)
	return root
}

// resolveMigrationsPath finds the migrations directory next to the working
// directory or the executable when path is empty
func resolveMigrationsPath(path string) (string, error) {
	if path == "" {
		path = defaultMigrationsPath
		if _, err := os.Stat(path); err != nil {
			if execPath, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(execPath), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					path = candidate
				}
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve migrations path: %w", err)
	}
	return abs, nil
}

// withMigrator opens the configured database and runs fn on a migrator
func (c *cli) withMigrator(fn func(m *migration.Migrator) error) error {
	if c.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		c.cfg = cfg
	}

	driverName := "postgres"
	if c.cfg.Database.Driver == "sqlite" {
		driverName = "sqlite3"
	}
	db, err := sql.Open(driverName, c.cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, c.cfg.Database.Driver, c.migrationsPath, c.log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			c.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	return fn(m)
}

func (c *cli) upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withMigrator(func(m *migration.Migrator) error { return m.Up() })
		},
	}
}

func (c *cli) downCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("rolling back every migration drops all storefront tables; pass --confirm")
			}
			return c.withMigrator(func(m *migration.Migrator) error { return m.Down() })
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm rolling back all migrations")
	return cmd
}

func (c *cli) stepsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "steps <n>",
		Short: "Apply n migrations (positive=up, negative=down)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return c.withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })
		},
	}
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withMigrator(func(m *migration.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					c.log.Info("No migrations applied")
					return nil
				}
				c.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
				return nil
			})
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the applied version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withMigrator(func(m *migration.Migrator) error {
				status, err := m.Status(c.migrationsPath)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "version: %d (dirty: %t)\n", status.Version, status.Dirty)
				if len(status.Pending) == 0 {
					fmt.Fprintln(out, "no pending migrations")
					return nil
				}
				fmt.Fprintln(out, "pending:")
				for _, name := range status.Pending {
					fmt.Fprintln(out, "  -", name)
				}
				return nil
			})
		},
	}
}

func (c *cli) forceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Force set the migration version (recovers a dirty state)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return c.withMigrator(func(m *migration.Migrator) error { return m.Force(version) })
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Create a new migration file pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(c.migrationsPath, args[0], description)
			if err != nil {
				return err
			}
			c.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrations, err := migration.ListMigrations(c.migrationsPath)
			if err != nil {
				return err
			}
			for _, name := range migrations {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
