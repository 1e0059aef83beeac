package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/lmercier/urlalias/internal/config"
)

// Cfg holds the loaded configuration, available to every subcommand once
// cobra has run initConfig.
var Cfg *config.Config

// RootCmd is the base command. Subcommands (run-server, migrate, create,
// deactivate, stats) register themselves via their own init() functions,
// which keeps the command packages free of import cycles.
var RootCmd = &cobra.Command{
	Use:   "urlalias",
	Short: "A URL alias service",
	Long: `A URL alias service that issues short keys redirecting to original URLs,
tracks per-redirect clicks, enforces expiration and deactivation, and
reports windowed click statistics.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads the configuration before any command runs.
func initConfig() {
	var err error
	Cfg, err = config.LoadConfig()
	if err != nil {
		log.Printf("Warning: Problem loading configuration: %v. Using default values.", err)
	}
}
