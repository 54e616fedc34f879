package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/internal/config"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration directions accepted by Migrate.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// RunMigrations applies pending migrations when enabled in configuration.
func RunMigrations(cfg *config.Config, logger *zap.Logger) error {
	if cfg == nil || !cfg.Migrations.Enabled {
		return nil
	}
	return Migrate(cfg, DirectionUp, logger)
}

// Migrate moves the schema in the requested direction using the embedded
// migration files. "down" rolls back a single step.
func Migrate(cfg *config.Config, direction string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, cfg.Database.Name, driver)
	if err != nil {
		return err
	}
	defer m.Close()

	switch direction {
	case DirectionUp:
		err = m.Up()
	case DirectionDown:
		err = m.Steps(-1)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return verr
	}
	logger.Info("database migrations applied",
		zap.String("direction", direction),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}
