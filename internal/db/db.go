// Package db opens the gorm connection for the configured driver and runs
// schema migrations. Both the server and the CLI commands go through it so
// driver selection stays in one place.
package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/lmercier/urlalias/internal/config"
	"github.com/lmercier/urlalias/internal/models"
)

// Open connects to the database selected by the configuration. SQLite is
// the default; Postgres is picked with database.driver=postgres and a DSN.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey regardless of driver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}

	switch cfg.Database.Driver {
	case "", "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database %q: %w", cfg.Database.Name, err)
		}
		return db, nil
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Migrate creates or updates the short_urls and clicks tables from the
// model definitions.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ShortURL{}, &models.Click{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
