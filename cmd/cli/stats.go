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

// StatsCmd prints windowed click statistics, for one key or for all of them.
var StatsCmd = &cobra.Command{
	Use:   "stats [short-key]",
	Short: "Shows click statistics for short URLs.",
	Long: `Without an argument, prints click statistics for every short URL
ordered by all-time clicks. With a short key, prints statistics for that
URL only. Inactive and expired URLs keep their statistics.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(cobraCmd *cobra.Command, args []string) {
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
	statsService := services.NewStatsService(shortURLRepo)

	if len(args) == 1 {
		stats, err := statsService.KeyStats(context.Background(), args[0])
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				fmt.Printf("Error: Short key '%s' not found\n", args[0])
			} else {
				fmt.Printf("Error retrieving statistics: %v\n", err)
			}
			os.Exit(1)
		}
		printStats(*stats)
		return
	}

	allStats, err := statsService.ListStats(context.Background())
	if err != nil {
		fmt.Printf("Error retrieving statistics: %v\n", err)
		os.Exit(1)
	}
	for _, row := range allStats {
		printStats(row)
		fmt.Println()
	}
}

func printStats(row repository.ShortURLStats) {
	fmt.Printf("Short key: %s\n", row.ShortKey)
	fmt.Printf("Original URL: %s\n", row.OriginalURL)
	fmt.Printf("Last hour clicks: %d\n", row.LastHourClicks)
	fmt.Printf("Last day clicks: %d\n", row.LastDayClicks)
	fmt.Printf("All-time clicks: %d\n", row.AllTimeClicks)
}
