package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"balance_insight/pkg/core/ratio"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Print the enriched table and KPI cards",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := loadTable(context.Background(), cfg, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, RenderTitle("BALANCE SHEET  "+filepath.Base(args[0])))
	fmt.Fprintln(out)

	if kpis, err := ratio.DeriveKPIs(table, cfg.Markers); err == nil {
		fmt.Fprintln(out, RenderKPIs(kpis))
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, RenderTable(table))
	fmt.Fprintf(out, "\n  %s\n\n", mutedStyle.Render(fmt.Sprintf("%d line items", len(table))))
	return nil
}
