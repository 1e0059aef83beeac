package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/lmercier/urlalias/cmd"
	"github.com/lmercier/urlalias/internal/api"
	"github.com/lmercier/urlalias/internal/config"
	"github.com/lmercier/urlalias/internal/db"
	"github.com/lmercier/urlalias/internal/models"
	"github.com/lmercier/urlalias/internal/monitor"
	"github.com/lmercier/urlalias/internal/repository"
	"github.com/lmercier/urlalias/internal/services"
	"github.com/lmercier/urlalias/internal/workers"
)

// RunServerCmd starts the HTTP server together with the background
// processes: the click worker pool and the URL monitor.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Starts the URL alias API server and background processes.",
	Long: `This command initializes the database, wires the repositories and
services, starts the asynchronous click workers and the URL monitor, then
launches the HTTP server with graceful shutdown.`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		gormDB, err := db.Open(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		if err := db.Migrate(gormDB); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}

		shortURLRepo := repository.NewShortURLRepository(gormDB)
		clickRepo := repository.NewClickRepository(gormDB)
		log.Println("Repositories initialized.")

		keyGen := services.NewKeyGenerator(shortURLRepo, cfg.Shortener.KeyLength, cfg.Shortener.MaxAttempts)
		shortURLService := services.NewShortURLService(shortURLRepo, clickRepo, keyGen, services.ExpiryPolicy{
			DefaultDays: cfg.Shortener.DefaultExpireDays,
			MinDays:     cfg.Shortener.MinExpireDays,
			MaxDays:     cfg.Shortener.MaxExpireDays,
		})
		statsService := services.NewStatsService(shortURLRepo)

		// Click events flow from redirect resolution to the worker pool
		// through this buffered channel.
		clickEvents := make(chan models.ClickEvent, cfg.Analytics.BufferSize)
		redirectService := services.NewRedirectService(shortURLRepo, clickEvents)
		workersWG := workers.StartClickWorkers(cfg.Analytics.WorkerCount, clickEvents, clickRepo)
		log.Printf("Click event channel initialized with a buffer of %d. %d worker(s) started.",
			cfg.Analytics.BufferSize, cfg.Analytics.WorkerCount)

		monitorInterval := time.Duration(cfg.Monitor.IntervalMinutes) * time.Minute
		urlMonitor := monitor.NewURLMonitor(shortURLRepo, monitorInterval)
		go urlMonitor.Start()
		log.Printf("URL monitor started with an interval of %v.", monitorInterval)

		router := gin.Default()
		handlers := api.NewHandlers(shortURLService, redirectService, statsService, cfg.Server.BaseURL)
		api.SetupRoutes(router, handlers)
		log.Println("API routes configured.")

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		go func() {
			log.Printf("Starting server on %s", serverAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()

		// Block until SIGINT or SIGTERM.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutdown signal received. Stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		// No new redirects are coming in: close the channel and let the
		// workers drain the remaining click events.
		close(clickEvents)
		workersWG.Wait()

		log.Println("Server stopped cleanly.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
