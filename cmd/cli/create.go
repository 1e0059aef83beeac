package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/lmercier/urlalias/cmd"
	"github.com/lmercier/urlalias/internal/config"
	"github.com/lmercier/urlalias/internal/db"
	"github.com/lmercier/urlalias/internal/repository"
	"github.com/lmercier/urlalias/internal/services"
)

var (
	originalURLFlag string
	customKeyFlag   string
	expiresDaysFlag int
)

// CreateCmd creates a short URL from the command line.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a short URL for a long URL.",
	Long: `Shortens the provided URL and prints the assigned short key.

Example:
  urlalias create --url="https://www.example.com/some/long/path" --expires-days=7`,
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

		shortURLRepo := repository.NewShortURLRepository(gormDB)
		clickRepo := repository.NewClickRepository(gormDB)
		keyGen := services.NewKeyGenerator(shortURLRepo, cfg.Shortener.KeyLength, cfg.Shortener.MaxAttempts)
		shortURLService := services.NewShortURLService(shortURLRepo, clickRepo, keyGen, services.ExpiryPolicy{
			DefaultDays: cfg.Shortener.DefaultExpireDays,
			MinDays:     cfg.Shortener.MinExpireDays,
			MaxDays:     cfg.Shortener.MaxExpireDays,
		})

		shortURL, err := shortURLService.Create(context.Background(), services.CreateParams{
			OriginalURL: originalURLFlag,
			CustomKey:   customKeyFlag,
			ExpiresDays: expiresDaysFlag,
		})
		if err != nil {
			log.Fatalf("Failed to create short URL: %v", err)
		}

		fmt.Printf("Short URL created successfully:\n")
		fmt.Printf("Key: %s\n", shortURL.ShortKey)
		fmt.Printf("Full URL: %s/%s\n", cfg.Server.BaseURL, shortURL.ShortKey)
		fmt.Printf("Expires at: %s\n", shortURL.ExpiresAt.Format("2006-01-02 15:04:05"))
	},
}

func init() {
	CreateCmd.Flags().StringVar(&originalURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.Flags().StringVar(&customKeyFlag, "key", "", "Optional custom short key (alphanumeric, 4-20 chars)")
	CreateCmd.Flags().IntVar(&expiresDaysFlag, "expires-days", 0, "Days until expiry (0 uses the configured default)")
	CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}
