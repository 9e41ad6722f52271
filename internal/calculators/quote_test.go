package calculators

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuote(t *testing.T) {
	in := QuoteInput{
		Area:          48.4,
		Coverage:      12,
		Coats:         2,
		WasteFraction: 0.1,
		Packages: []PackageOption{
			priced("Galão 3,6L", 3.6, "89.90"),
			priced("Lata 18L", 18, "349.90"),
		},
		LaborIncluded: true,
	}

	q, err := BuildQuote(in, DefaultQuoteRates())
	require.NoError(t, err)

	assert.Equal(t, 8.9, q.LitersNeeded)
	// 3 × 3.6 = 10.8 L covers 8.9 L with the least leftover
	assert.Equal(t, "3 × Galão 3,6L", q.Packaging.Summary())
	assert.Equal(t, "269.7", q.Material.String())
	assert.Equal(t, "40.46", q.Auxiliary.String())
	// 48.4 m² × 8
	assert.Equal(t, "387.2", q.Labor.String())
	assert.True(t, q.Total.Equal(decimal.RequireFromString("697.36")), "total %s", q.Total)
}

func TestBuildQuote_WithoutLabor(t *testing.T) {
	q, err := BuildQuote(QuoteInput{
		Area:     10,
		Coverage: 10,
		Coats:    1,
		Packages: []PackageOption{priced("1L", 1, "20")},
	}, DefaultQuoteRates())
	require.NoError(t, err)

	assert.True(t, q.Labor.IsZero())
	assert.True(t, q.Total.Equal(decimal.NewFromInt(23)), "total %s", q.Total)
}

func TestBuildQuote_Errors(t *testing.T) {
	_, err := BuildQuote(QuoteInput{Area: 10, Coverage: 10, Coats: 1}, DefaultQuoteRates())
	assert.ErrorIs(t, err, ErrNoPackages)

	_, err = BuildQuote(QuoteInput{
		Area:     10,
		Coverage: 0,
		Coats:    1,
		Packages: []PackageOption{priced("1L", 1, "20")},
	}, DefaultQuoteRates())
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = BuildQuote(QuoteInput{
		Area:     10,
		Coverage: 10,
		Coats:    1,
		Packages: []PackageOption{priced("1L", 1, "20")},
	}, QuoteRates{AuxiliaryRate: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
