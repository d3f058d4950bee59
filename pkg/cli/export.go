package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"balance_insight/pkg/core/export"
)

var flagExportOut string

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Write the enriched table to an Excel workbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output .xlsx path (default FILE_analysis.xlsx)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := loadTable(context.Background(), cfg, args[0])
	if err != nil {
		return err
	}

	out := flagExportOut
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "_analysis.xlsx"
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := export.WriteTable(f, table); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s (%d rows)\n", out, len(table))
	return nil
}
