package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/messagely/messagely-api/internal/infrastructure/db/sqlstore/migrations"
)

// Migrate applies all pending up migrations on a dedicated connection, which
// is closed before returning.
func Migrate(dialect Dialect, dsn string) error {
	dsn, err := dataSource(dialect, dsn)
	if err != nil {
		return err
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return fmt.Errorf("open %s for migration: %w", dialect, err)
	}

	var driver database.Driver
	switch dialect {
	case Postgres:
		driver, err = migratepg.WithInstance(db, &migratepg.Config{})
	case SQLite:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("init migration driver: %w", err)
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("load migrations: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", src, string(dialect), driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("init migrator failed: %w", err)
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migrate up failed: %w", err)
	}
	return nil
}
