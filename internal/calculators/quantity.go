// Package calculators computes how much coating material (paint or flooring)
// a surface needs, and how to buy it in discrete packages.
package calculators

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is returned for non-positive, negative or non-finite inputs.
var ErrInvalidInput = errors.New("invalid input")

// maxArea bounds the net area in m² so derived quantities stay finite.
const maxArea = 1e12

type Unit string

const (
	UnitLiters Unit = "liters"
	UnitUnits  Unit = "units"
)

// step is the smallest quantity a result is rounded up to.
func (u Unit) step() (float64, error) {
	switch u {
	case UnitLiters, "":
		return 0.1, nil
	case UnitUnits:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidInput, u)
	}
}

// SurfaceSpec describes the geometry to be covered, in meters.
type SurfaceSpec struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	PanelCount   int     `json:"panel_count"`
	OpeningsArea float64 `json:"openings_area"`
}

// MaterialProfile describes how far a material goes.
// CoverageRatePerCoat is the area one volume unit (or one package unit) covers
// with a single coat.
type MaterialProfile struct {
	CoverageRatePerCoat float64 `json:"coverage_rate_per_coat"`
	Coats               int     `json:"coats"`
	WasteFraction       float64 `json:"waste_fraction"`
	Unit                Unit    `json:"unit,omitempty"`
}

type QuantityResult struct {
	TotalArea   float64        `json:"total_area"`
	RawQuantity float64        `json:"raw_quantity"`
	Required    float64        `json:"required"`
	Unit        Unit           `json:"unit"`
	Packaging   *PackagingPlan `json:"packaging,omitempty"`
}

func (s SurfaceSpec) Validate() error {
	if !positive(s.Width) {
		return fmt.Errorf("%w: width must be positive, got %v", ErrInvalidInput, s.Width)
	}
	if !positive(s.Height) {
		return fmt.Errorf("%w: height must be positive, got %v", ErrInvalidInput, s.Height)
	}
	if s.PanelCount < 1 {
		return fmt.Errorf("%w: panel count must be at least 1, got %d", ErrInvalidInput, s.PanelCount)
	}
	if !nonNegative(s.OpeningsArea) {
		return fmt.Errorf("%w: openings area must not be negative, got %v", ErrInvalidInput, s.OpeningsArea)
	}
	return nil
}

func (p MaterialProfile) Validate() error {
	if !positive(p.CoverageRatePerCoat) {
		return fmt.Errorf("%w: coverage rate must be positive, got %v", ErrInvalidInput, p.CoverageRatePerCoat)
	}
	if p.Coats < 1 {
		return fmt.Errorf("%w: coats must be at least 1, got %d", ErrInvalidInput, p.Coats)
	}
	if !nonNegative(p.WasteFraction) {
		return fmt.Errorf("%w: waste fraction must not be negative, got %v", ErrInvalidInput, p.WasteFraction)
	}
	_, err := p.Unit.step()
	return err
}

// NetArea is the gross surface minus openings, never below zero.
func (s SurfaceSpec) NetArea() float64 {
	return math.Max(0, s.Width*s.Height*float64(s.PanelCount)-s.OpeningsArea)
}

// Compute returns the material needed to cover surface with profile.
// Coats multiply consumption: coverage is the yield of a single coat.
func Compute(surface SurfaceSpec, profile MaterialProfile) (QuantityResult, error) {
	if err := surface.Validate(); err != nil {
		return QuantityResult{}, err
	}
	if err := profile.Validate(); err != nil {
		return QuantityResult{}, err
	}
	return compute(surface.NetArea(), profile)
}

// ComputeForArea is Compute for callers that already know the net area.
func ComputeForArea(area float64, profile MaterialProfile) (QuantityResult, error) {
	if !nonNegative(area) {
		return QuantityResult{}, fmt.Errorf("%w: area must not be negative, got %v", ErrInvalidInput, area)
	}
	if err := profile.Validate(); err != nil {
		return QuantityResult{}, err
	}
	return compute(area, profile)
}

// ComputeWithPackaging runs Compute and picks packages covering the result.
func ComputeWithPackaging(surface SurfaceSpec, profile MaterialProfile, options []PackageOption) (QuantityResult, error) {
	result, err := Compute(surface, profile)
	if err != nil {
		return QuantityResult{}, err
	}
	plan, err := RecommendPackaging(result.Required, options)
	if err != nil {
		return QuantityResult{}, err
	}
	result.Packaging = &plan
	return result, nil
}

func compute(area float64, profile MaterialProfile) (QuantityResult, error) {
	if math.IsNaN(area) || area > maxArea {
		return QuantityResult{}, fmt.Errorf("%w: area %v m² is out of range", ErrInvalidInput, area)
	}

	unit := profile.Unit
	if unit == "" {
		unit = UnitLiters
	}
	step, _ := unit.step()

	raw := area / profile.CoverageRatePerCoat * float64(profile.Coats)
	required := ceilTo(raw*(1+profile.WasteFraction), step)
	if math.IsInf(required, 0) || math.IsNaN(required) || required > maxRequired {
		return QuantityResult{}, fmt.Errorf("%w: required quantity for %v m² is out of range", ErrInvalidInput, area)
	}

	return QuantityResult{
		TotalArea:   round(area, 4),
		RawQuantity: round(raw, 4),
		Required:    required,
		Unit:        unit,
	}, nil
}

// ceilTo rounds v up to a multiple of step. Values already within float noise
// of a multiple are not bumped to the next one.
func ceilTo(v, step float64) float64 {
	if v <= 0 {
		return 0
	}
	n := v / step
	c := math.Ceil(n - 1e-9)
	return round(c*step, 6)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
