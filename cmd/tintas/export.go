package main

import (
	"context"
	"fmt"
	"time"
	"tintas-bot/internal/storage"

	"github.com/spf13/cobra"
)

var (
	exportDays int
	exportDir  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data to Excel",
}

var exportCalculationsCmd = &cobra.Command{
	Use:   "calculations",
	Short: "Write the calculation log of the last --days days to an .xlsx file",
	Args:  cobra.NoArgs,
	RunE:  runExportCalculations,
}

func init() {
	exportCalculationsCmd.Flags().IntVar(&exportDays, "days", 30, "How many days back to export")
	exportCalculationsCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (default REPORTS_DIR)")
	exportCmd.AddCommand(exportCalculationsCmd)
}

func runExportCalculations(cmd *cobra.Command, args []string) error {
	if exportDays < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", exportDays)
	}
	dir := exportDir
	if dir == "" {
		dir = cfg.ReportsDir
	}

	return withStorage(cmd, func(ctx context.Context, s *storage.PostgresStorage) error {
		now := time.Now()
		name := fmt.Sprintf("calculations_%s", now.Format("20060102_150405"))

		path, err := s.ExportCalculationsToExcel(ctx, dir, name, now.AddDate(0, 0, -exportDays))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	})
}
