package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
)

const calculationsSheet = "Calculations"

var calculationHeaders = []string{
	"ID", "Kind", "Source", "User", "Area (m²)", "Required", "Unit", "Summary", "Created At",
}

// BuildCalculationsReport lays calculations out one per row under a bold header.
func BuildCalculationsReport(calcs []Calculation) (*excelize.File, error) {
	f := excelize.NewFile()

	// the default sheet becomes the report
	if err := f.SetSheetName("Sheet1", calculationsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	for col, header := range calculationHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(calculationsSheet, cell, header)
	}

	for row, calc := range calcs {
		data := []interface{}{
			calc.ID,
			calc.Kind,
			calc.Source,
			calc.UserRef,
			calc.TotalArea,
			calc.Required,
			calc.Unit,
			calc.Summary,
			calc.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(calculationsSheet, cell, value)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		lastCell, _ := excelize.CoordinatesToCellName(len(calculationHeaders), 1)
		f.SetCellStyle(calculationsSheet, "A1", lastCell, style)
	}

	f.SetActiveSheet(0)
	return f, nil
}

// ExportCalculationsToExcel writes the calculations made since the given time
// to dir/<name>.xlsx and returns the file path.
func (s *PostgresStorage) ExportCalculationsToExcel(ctx context.Context, dir, name string, since time.Time) (string, error) {
	const operation = "storage.ExportCalculationsToExcel"

	calcs, err := s.ListCalculations(ctx, since, 100_000)
	if err != nil {
		return "", fmt.Errorf("%s: %w", operation, err)
	}

	return SaveCalculationsReport(calcs, dir, name)
}

func SaveCalculationsReport(calcs []Calculation, dir, name string) (string, error) {
	f, err := BuildCalculationsReport(calcs)
	if err != nil {
		return "", err
	}
	defer f.Close()

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(dir, name+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return path, nil
}
