package catalog

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	const doc = `
currency: BRL
products:
  - id: CORAL_002
    name: Coral Esmalte Sintético
    brand: Coral
    coverage: 8 m²/L
    packages:
      - {label: Quarto, size: 900ml, price: "45.90"}
      - {size: "3,6L", price: "159.90"}
  - id: PPG_001
    name: PPG Primer
    coverage: "12"
    active: false
`
	products, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, products, 2)

	esmalte := products[0]
	assert.Equal(t, 8.0, esmalte.Coverage)
	assert.True(t, esmalte.Active)
	require.Len(t, esmalte.Packages, 2)
	assert.InDelta(t, 0.9, esmalte.Packages[0].Size, 1e-12)
	assert.Equal(t, "Quarto", esmalte.Packages[0].Label)
	assert.Equal(t, "45.9", esmalte.Packages[0].Price.String())
	assert.Equal(t, 3.6, esmalte.Packages[1].Size)
	assert.Equal(t, "3,6L", esmalte.Packages[1].Label)

	assert.False(t, products[1].Active)
	assert.Empty(t, products[1].Packages)
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]string{
		"missing id":     "products:\n  - {name: X, coverage: '10'}\n",
		"missing name":   "products:\n  - {id: X, coverage: '10'}\n",
		"zero coverage":  "products:\n  - {id: X, name: X, coverage: '0 m²/L'}\n",
		"bad size":       "products:\n  - {id: X, name: X, coverage: '10', packages: [{size: big}]}\n",
		"negative price": "products:\n  - {id: X, name: X, coverage: '10', packages: [{size: 1L, price: '-1'}]}\n",
		"duplicate id":   "products:\n  - {id: X, name: X, coverage: '10'}\n  - {id: X, name: Y, coverage: '10'}\n",
		"unknown field":  "products:\n  - {id: X, name: X, coverage: '10', colour: red}\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]float64{
		"18L":   18,
		"3.6L":  3.6,
		"3,6 l": 3.6,
		"900ml": 0.9,
		"2.5":   2.5,
	}
	for in, want := range tests {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}

	_, err := ParseSize("-1L")
	assert.ErrorIs(t, err, ErrInvalidCatalog)
}

func TestLoad_SeedCatalog(t *testing.T) {
	_, file, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(file), "..", "..", "configs", "catalog.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("seed catalog not found: %v", err)
	}

	products, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, products)
	for _, p := range products {
		assert.NotEmpty(t, p.Packages, p.ID)
	}
}
