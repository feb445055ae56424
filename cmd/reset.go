package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/bunkerdash/internal/cli"
	"github.com/theirongolddev/bunkerdash/internal/store"
)

var flagResetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete stored data and restore the defaults",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Skip confirmation")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	path := dbPath(loadConfig())

	if !flagResetYes {
		if !cli.IsTerminal(cmd.InOrStdin()) {
			return fmt.Errorf("confirmation required: rerun with --yes")
		}
		ok := false
		err := huh.NewConfirm().
			Title("Réinitialiser le tableau de bord ?").
			Description("Toutes les données de " + path + " seront supprimées.").
			Affirmative("Réinitialiser").
			Negative("Annuler").
			Value(&ok).
			Run()
		if err != nil {
			return err
		}
		if !ok {
			info("  Annulé.\n")
			return nil
		}
	}

	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Reset(cmd.Context()); err != nil {
		return err
	}
	info("  Données supprimées. Les valeurs par défaut seront utilisées.\n")
	return nil
}
