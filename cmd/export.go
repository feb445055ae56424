package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bunkerdash/internal/export"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:       "export clients|payouts|activity|mrr",
	Short:     "Export a table as CSV",
	Args:      cobra.ExactArgs(1),
	ValidArgs: exportKinds(),
	RunE:      runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

func exportKinds() []string {
	out := make([]string, len(export.Kinds))
	for i, k := range export.Kinds {
		out[i] = string(k)
	}
	return out
}

func runExport(cmd *cobra.Command, args []string) error {
	kind, err := export.ParseKind(strings.ToLower(args[0]))
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var w io.Writer = cmd.OutOrStdout()
	if flagExportOut != "" {
		//nolint:gosec // user-chosen output file
		f, err := os.Create(flagExportOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", flagExportOut, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := export.Write(w, kind, s.dispatch.Store().State()); err != nil {
		return err
	}
	if flagExportOut != "" {
		info("  %s exporté dans %s\n", kind, flagExportOut)
	}
	return nil
}
