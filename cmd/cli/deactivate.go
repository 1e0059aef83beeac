package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/lmercier/urlalias/cmd"
	"github.com/lmercier/urlalias/internal/config"
	"github.com/lmercier/urlalias/internal/db"
	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/repository"
	"github.com/lmercier/urlalias/internal/services"
)

// DeactivateCmd flips a short URL to inactive. The transition is one-way:
// there is no reactivate command.
var DeactivateCmd = &cobra.Command{
	Use:   "deactivate [short-key]",
	Short: "Deactivates a short URL.",
	Long:  `Permanently deactivates the short URL with the given key. Deactivated URLs answer Gone on redirect and cannot be reactivated.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cobraCmd *cobra.Command, args []string) {
		shortKey := args[0]

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

		shortURLRepo := repository.NewShortURLRepository(gormDB)
		clickRepo := repository.NewClickRepository(gormDB)
		keyGen := services.NewKeyGenerator(shortURLRepo, cfg.Shortener.KeyLength, cfg.Shortener.MaxAttempts)
		shortURLService := services.NewShortURLService(shortURLRepo, clickRepo, keyGen, services.ExpiryPolicy{
			DefaultDays: cfg.Shortener.DefaultExpireDays,
			MinDays:     cfg.Shortener.MinExpireDays,
			MaxDays:     cfg.Shortener.MaxExpireDays,
		})

		if _, err := shortURLService.Deactivate(context.Background(), shortKey); err != nil {
			switch {
			case errors.Is(err, errs.ErrNotFound):
				fmt.Printf("Error: Short key '%s' not found\n", shortKey)
			case errors.Is(err, errs.ErrAlreadyDeactivated):
				fmt.Printf("Error: Short key '%s' is already deactivated\n", shortKey)
			default:
				fmt.Printf("Error deactivating short URL: %v\n", err)
			}
			os.Exit(1)
		}

		fmt.Printf("Short URL '%s' deactivated.\n", shortKey)
	},
}

func init() {
	cmd.RootCmd.AddCommand(DeactivateCmd)
}
