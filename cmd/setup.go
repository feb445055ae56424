package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bunkerdash/internal/config"
	"github.com/theirongolddev/bunkerdash/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configuration wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg := loadConfig()

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	vals.Apply(&cfg)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `bunkerdash setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
