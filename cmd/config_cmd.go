package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bunkerdash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:           %s\n", dbPath(cfg))
	fmt.Printf("    Log file:           %s\n", config.LogPath(cfg))
	fmt.Printf("    Log level:          %s\n", cfg.General.LogLevel)
	if cfg.General.DefaultTimeRange != "" {
		fmt.Printf("    Default time range: %s months\n", cfg.General.DefaultTimeRange)
	} else {
		fmt.Println("    Default time range: 12 months")
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:       %s\n", cfg.Server.Addr)
	fmt.Printf("    Poll interval: %ds\n", cfg.Server.PollIntervalSec)
	fmt.Printf("    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Println()

	fmt.Println("  Run `bunkerdash setup` to reconfigure.")
	return nil
}
