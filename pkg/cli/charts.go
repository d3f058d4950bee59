package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"balance_insight/pkg/core/chart"
)

var flagChartsOut string

var chartsCmd = &cobra.Command{
	Use:   "charts FILE",
	Short: "Render the comparison, growth and composition charts as PNG",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharts,
}

func init() {
	chartsCmd.Flags().StringVarP(&flagChartsOut, "out", "o", ".", "Output directory")
	rootCmd.AddCommand(chartsCmd)
}

func runCharts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := loadTable(context.Background(), cfg, args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(flagChartsOut, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	for _, kind := range chart.Kinds {
		var buf bytes.Buffer
		if err := chart.Render(&buf, table, kind); err != nil {
			if errors.Is(err, chart.ErrNoData) {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", warnStyle.Render(fmt.Sprintf("skipped %s: %v", kind, err)))
				continue
			}
			return err
		}
		path := filepath.Join(flagChartsOut, string(kind)+".png")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", path)
	}
	return nil
}
