package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/bunkerdash/internal/source"
)

var flagImportForce bool

var importCmd = &cobra.Command{
	Use:   "import <file.json|dir>",
	Short: "Import a browser localStorage dump",
	Long: "Load the dashboard document from a JSON dump. A directory imports its newest JSON file.\n" +
		"Referrals stored by client name are migrated to client ids.",
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVarP(&flagImportForce, "force", "f", false, "Replace existing data without asking")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	path, err := source.Resolve(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	res, err := source.ParseFile(path)
	if err != nil {
		return fmt.Errorf("importing %s: %w", path, err)
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if s.stored && !flagImportForce {
		return fmt.Errorf("des données existent déjà dans %s (utilisez --force pour les remplacer)", dbPath(s.cfg))
	}

	if err := s.db.Put(cmd.Context(), res.State); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"path":       path,
		"wrapped":    res.Wrapped,
		"clients":    len(res.State.Clients),
		"affiliates": len(res.State.Affiliates),
	}).Info("imported dump")

	info("  Importé %s : %d clients, %d affiliés, %d mois de MRR\n",
		path, len(res.State.Clients), len(res.State.Affiliates), len(res.State.MrrHistory))
	for _, name := range res.Unresolved {
		info("  Parrainage ignoré : aucun client nommé %q\n", name)
	}
	for _, w := range res.Warnings {
		info("  Avertissement : %s\n", w)
	}
	return nil
}
