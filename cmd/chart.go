package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/bunkerdash/internal/model"
	"github.com/theirongolddev/bunkerdash/internal/view"
)

var (
	flagChartRange string
	flagChartOut   string
	flagChartHover float64
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Write the MRR chart as SVG",
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().StringVarP(&flagChartRange, "range", "r", "", "Trailing months: 3, 6 or 12 (default: stored range)")
	chartCmd.Flags().StringVarP(&flagChartOut, "out", "o", "", "Output file (default stdout)")
	chartCmd.Flags().Float64Var(&flagChartHover, "hover", -1, "Pointer x in viewBox units; draws the tooltip")
	rootCmd.AddCommand(chartCmd)
}

func runChart(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	state := s.dispatch.Store().State()
	r := state.UI.MrrTimeRange
	if flagChartRange != "" {
		if r, err = model.ParseTimeRange(flagChartRange); err != nil {
			return err
		}
	}

	var hover *float64
	if cmd.Flags().Changed("hover") {
		hover = &flagChartHover
	}

	svg, err := view.ChartSVG(state, r, hover)
	if err != nil {
		return err
	}

	if flagChartOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), svg)
		return err
	}
	if err := os.WriteFile(flagChartOut, []byte(svg+"\n"), 0o644); err != nil { //nolint:gosec // user-chosen output file
		return fmt.Errorf("writing chart: %w", err)
	}
	info("  Graphique %s écrit dans %s\n", r.Label(), flagChartOut)
	return nil
}
