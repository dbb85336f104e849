package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Migrate executes pending migrations from the given directory. It is
// idempotent and safe to call multiple times; only pending migrations run.
// The provider must be connected.
func (p *Provider) Migrate(migrationsPath string) error {
	pool := p.Pool()
	if pool == nil {
		return fmt.Errorf("postgres provider is not connected")
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			p.logger.Warn("failed to close migration db handle", zap.Error(err))
		}
	}()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			p.logger.Warn("failed to close migration source", zap.Error(srcErr))
		}
		if dbErr != nil {
			p.logger.Warn("failed to close migration database", zap.Error(dbErr))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		p.logger.Info("no migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	version, _, _ := m.Version()
	p.logger.Info("applied migrations", zap.Uint("version", version))
	return nil
}
