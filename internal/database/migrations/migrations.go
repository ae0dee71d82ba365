package migrations

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/uptrace/bun"

	"ticketly/internal/logger"
)

// Run applies any pending migrations from dir against the given database.
// Each service owns its migrations directory under migrations/<service>.
func Run(bunDB *bun.DB, dir string, log *logger.Logger) error {
	driver, err := postgres.WithInstance(bunDB.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator for %s: %w", dir, err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("DATABASE", "No pending migrations")
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("DATABASE", fmt.Sprintf("Applied migrations from %s", dir))
	return nil
}
