package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/lmercier/urlalias/cmd"
	"github.com/lmercier/urlalias/internal/config"
	"github.com/lmercier/urlalias/internal/db"
)

// MigrateCmd creates or updates the database schema.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Long: `Connects to the configured database and runs GORM automatic
migrations, creating the 'short_urls' and 'clicks' tables from the Go
models.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		gormDB, err := db.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			log.Fatalf("FATAL: Failed to get underlying SQL database: %v", err)
		}
		defer sqlDB.Close()

		if err := db.Migrate(gormDB); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
