package calculators

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrNoPackages = errors.New("product has no packages")

type QuoteRates struct {
	AuxiliaryRate decimal.Decimal
	LaborPerM2    decimal.Decimal
}

func DefaultQuoteRates() QuoteRates {
	return QuoteRates{
		AuxiliaryRate: decimal.NewFromFloat(0.15),
		LaborPerM2:    decimal.NewFromInt(8),
	}
}

type QuoteInput struct {
	Area          float64
	Coverage      float64
	Coats         int
	WasteFraction float64
	Packages      []PackageOption
	LaborIncluded bool
}

type QuoteResult struct {
	Area         float64         `json:"area"`
	Coats        int             `json:"coats"`
	LitersNeeded float64         `json:"liters_needed"`
	Packaging    PackagingPlan   `json:"recommended_package"`
	Material     decimal.Decimal `json:"material"`
	Auxiliary    decimal.Decimal `json:"auxiliary"`
	Labor        decimal.Decimal `json:"labor"`
	Total        decimal.Decimal `json:"total"`
}

// BuildQuote prices the paint for area from the product's packages, plus
// auxiliary materials and optional labor.
func BuildQuote(in QuoteInput, rates QuoteRates) (QuoteResult, error) {
	if len(in.Packages) == 0 {
		return QuoteResult{}, ErrNoPackages
	}
	if rates.AuxiliaryRate.IsNegative() || rates.LaborPerM2.IsNegative() {
		return QuoteResult{}, fmt.Errorf("%w: quote rates must not be negative", ErrInvalidInput)
	}

	qty, err := ComputeForArea(in.Area, MaterialProfile{
		CoverageRatePerCoat: in.Coverage,
		Coats:               in.Coats,
		WasteFraction:       in.WasteFraction,
		Unit:                UnitLiters,
	})
	if err != nil {
		return QuoteResult{}, err
	}

	plan, err := RecommendPackaging(qty.Required, in.Packages)
	if err != nil {
		return QuoteResult{}, err
	}

	material := plan.TotalCost.Round(2)
	auxiliary := material.Mul(rates.AuxiliaryRate).Round(2)
	labor := decimal.Zero
	if in.LaborIncluded {
		labor = decimal.NewFromFloat(qty.TotalArea).Mul(rates.LaborPerM2).Round(2)
	}

	return QuoteResult{
		Area:         qty.TotalArea,
		Coats:        in.Coats,
		LitersNeeded: qty.Required,
		Packaging:    plan,
		Material:     material,
		Auxiliary:    auxiliary,
		Labor:        labor,
		Total:        material.Add(auxiliary).Add(labor),
	}, nil
}
