package api

import (
	"tintas-bot/internal/calculators"
	"tintas-bot/internal/storage"
)

// PaintRequest mirrors the calculate-paint endpoint body. Optional fields left
// nil take the server defaults.
type PaintRequest struct {
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	Walls         int       `json:"walls,omitempty"`
	Panels        int       `json:"panels,omitempty"`
	Openings      *float64  `json:"openings,omitempty"`
	Coverage      *float64  `json:"coverage,omitempty"`
	Coats         *int      `json:"coats,omitempty"`
	WasteFraction *float64  `json:"waste_fraction,omitempty"`
	Packages      []float64 `json:"packages,omitempty"`
}

type PaintResponse struct {
	ID               string                     `json:"id,omitempty"`
	TotalArea        float64                    `json:"total_area"`
	RawLiters        float64                    `json:"raw_liters"`
	LitersNeeded     float64                    `json:"liters_needed"`
	Coverage         float64                    `json:"coverage"`
	Coats            int                        `json:"coats"`
	WasteFraction    float64                    `json:"waste_fraction"`
	SuggestedPackage string                     `json:"suggested_package"`
	Packaging        *calculators.PackagingPlan `json:"packaging,omitempty"`
}

type FloorRequest struct {
	Width         float64  `json:"width"`
	Length        float64  `json:"length"`
	Panels        *int     `json:"panels,omitempty"`
	Openings      *float64 `json:"openings,omitempty"`
	FloorType     string   `json:"floor_type"`
	BoxCoverage   float64  `json:"box_coverage"`
	WasteFraction *float64 `json:"waste_fraction,omitempty"`
}

type FloorResponse struct {
	ID            string  `json:"id,omitempty"`
	TotalArea     float64 `json:"total_area"`
	UnitsNeeded   float64 `json:"units_needed"`
	FloorType     string  `json:"floor_type"`
	WasteFraction float64 `json:"waste_fraction"`
	GroutKg       float64 `json:"grout_kg"`
	AdhesiveKg    float64 `json:"adhesive_kg"`
}

type QuoteRequest struct {
	ProductID     string  `json:"product_id"`
	Area          float64 `json:"area"`
	Coats         *int    `json:"coats,omitempty"`
	LaborIncluded bool    `json:"labor_included"`
}

type ProductSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
}

type QuoteResponse struct {
	Quote   calculators.QuoteResult `json:"quote"`
	Product ProductSummary          `json:"product"`
}

type ProductsResponse struct {
	Products []storage.Product `json:"products"`
}

type DeleteUserDataResponse struct {
	UserRef      string `json:"user_ref"`
	Calculations int64  `json:"calculations"`
	Consents     int64  `json:"consents"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
