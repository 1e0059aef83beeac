package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config maps the whole application configuration. Values come from
// configs/config.yaml with environment-variable overrides; every key has a
// default so the file is optional.
type Config struct {
	// Server holds the HTTP listener settings.
	Server struct {
		Port    int    `mapstructure:"port"`     // HTTP server port
		BaseURL string `mapstructure:"base_url"` // Base URL used when rendering full short links
	} `mapstructure:"server"`

	// Database selects and configures the storage backend.
	Database struct {
		Driver string `mapstructure:"driver"` // "sqlite" (default) or "postgres"
		Name   string `mapstructure:"name"`   // SQLite database file
		DSN    string `mapstructure:"dsn"`    // Postgres DSN, used when driver is "postgres"
	} `mapstructure:"database"`

	// Shortener bounds key generation and expiry policy.
	Shortener struct {
		KeyLength         int `mapstructure:"key_length"`          // Length of generated short keys
		MaxAttempts       int `mapstructure:"max_attempts"`        // Collision-retry budget for the generator
		DefaultExpireDays int `mapstructure:"default_expire_days"` // Expiry applied when the caller gives none
		MinExpireDays     int `mapstructure:"min_expire_days"`
		MaxExpireDays     int `mapstructure:"max_expire_days"`
	} `mapstructure:"shortener"`

	// Analytics configures the asynchronous click recording pipeline.
	Analytics struct {
		BufferSize  int `mapstructure:"buffer_size"`  // Click event channel buffer
		WorkerCount int `mapstructure:"worker_count"` // Number of click worker goroutines
	} `mapstructure:"analytics"`

	// Monitor configures the background expiry/reachability sweep.
	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"`
	} `mapstructure:"monitor"`
}

// LoadConfig loads the application configuration using Viper. Environment
// variables override file values ("server.port" becomes SERVER_PORT), and a
// missing config file falls back to defaults rather than failing.
func LoadConfig() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.AddConfigPath("./configs")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.name", "url_alias.db")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("shortener.key_length", 8)
	viper.SetDefault("shortener.max_attempts", 10)
	viper.SetDefault("shortener.default_expire_days", 1)
	viper.SetDefault("shortener.min_expire_days", 1)
	viper.SetDefault("shortener.max_expire_days", 365)
	viper.SetDefault("analytics.buffer_size", 1000)
	viper.SetDefault("analytics.worker_count", 5)
	viper.SetDefault("monitor.interval_minutes", 5)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	log.Printf("Configuration loaded: Server Port=%d, DB Driver=%s, Key Length=%d, Default Expiry=%dd",
		cfg.Server.Port, cfg.Database.Driver, cfg.Shortener.KeyLength, cfg.Shortener.DefaultExpireDays)

	return &cfg, nil
}
