package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleCalculations() []Calculation {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return []Calculation{
		{ID: "a1", Kind: "paint", Source: "api", TotalArea: 48.4, Required: 8.9, Unit: "liters", Summary: "2 × 3,6 L + 2 × 0,9 L", CreatedAt: created},
		{ID: "b2", Kind: "floor", Source: "bot", UserRef: "tg:42", TotalArea: 20, Required: 10, Unit: "units", CreatedAt: created},
	}
}

func TestBuildCalculationsReport(t *testing.T) {
	f, err := BuildCalculationsReport(sampleCalculations())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{calculationsSheet}, f.GetSheetList())

	header, err := f.GetCellValue(calculationsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "ID", header)

	kind, err := f.GetCellValue(calculationsSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "floor", kind)

	summary, err := f.GetCellValue(calculationsSheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "2 × 3,6 L + 2 × 0,9 L", summary)

	created, err := f.GetCellValue(calculationsSheet, "I2")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14 09:30", created)
}

func TestSaveCalculationsReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := SaveCalculationsReport(sampleCalculations(), dir, "calculations_20260314")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "calculations_20260314.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(calculationsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
