package server

import (
	"fmt"
	"strings"
	"tintas-bot/internal/calculators"
	"tintas-bot/internal/config"
	"tintas-bot/pkg/api"
)

// ComputePaint fills the fields req leaves out from pricing and runs the
// paint calculation with packaging.
func ComputePaint(pricing config.PricingConfig, req api.PaintRequest) (api.PaintResponse, calculators.QuantityResult, error) {
	walls := req.Walls
	if walls == 0 {
		walls = req.Panels
	}

	surface := calculators.SurfaceSpec{
		Width:        req.Width,
		Height:       req.Height,
		PanelCount:   walls,
		OpeningsArea: valueOr(req.Openings, 0),
	}
	profile := calculators.MaterialProfile{
		CoverageRatePerCoat: valueOr(req.Coverage, pricing.DefaultCoverage),
		Coats:               valueOr(req.Coats, pricing.DefaultCoats),
		WasteFraction:       valueOr(req.WasteFraction, pricing.DefaultWaste),
		Unit:                calculators.UnitLiters,
	}

	sizes := req.Packages
	if len(sizes) > calculators.MaxPackageOptions {
		return api.PaintResponse{}, calculators.QuantityResult{}, fmt.Errorf("%w: at most %d packages, got %d",
			calculators.ErrInvalidInput, calculators.MaxPackageOptions, len(sizes))
	}
	if len(sizes) == 0 {
		sizes = pricing.PackageSizes
	}

	result, err := calculators.ComputeWithPackaging(surface, profile, calculators.LiterPackages(sizes))
	if err != nil {
		return api.PaintResponse{}, calculators.QuantityResult{}, err
	}

	return api.PaintResponse{
		TotalArea:        result.TotalArea,
		RawLiters:        result.RawQuantity,
		LitersNeeded:     result.Required,
		Coverage:         profile.CoverageRatePerCoat,
		Coats:            profile.Coats,
		WasteFraction:    profile.WasteFraction,
		SuggestedPackage: result.Packaging.Summary(),
		Packaging:        result.Packaging,
	}, result, nil
}

// ComputeFloor runs the flooring calculation for req. Panels default to one
// room and unknown floor types use the pricing waste.
func ComputeFloor(floors *calculators.FloorCalculator, pricing config.PricingConfig, req api.FloorRequest) (api.FloorResponse, calculators.FloorResult, error) {
	floorType := calculators.FloorType(strings.ToLower(strings.TrimSpace(req.FloorType)))
	if floorType == "" {
		return api.FloorResponse{}, calculators.FloorResult{}, fmt.Errorf("%w: floor_type is required", calculators.ErrInvalidInput)
	}

	surface := calculators.SurfaceSpec{
		Width:        req.Width,
		Height:       req.Length,
		PanelCount:   valueOr(req.Panels, 1),
		OpeningsArea: valueOr(req.Openings, 0),
	}

	result, err := floors.Calculate(surface, floorType, req.BoxCoverage, valueOr(req.WasteFraction, pricing.DefaultWaste))
	if err != nil {
		return api.FloorResponse{}, calculators.FloorResult{}, err
	}

	return api.FloorResponse{
		TotalArea:     result.TotalArea,
		UnitsNeeded:   result.Required,
		FloorType:     string(result.FloorType),
		WasteFraction: result.WasteFraction,
		GroutKg:       result.GroutKg,
		AdhesiveKg:    result.AdhesiveKg,
	}, result, nil
}

// FloorSummary is the one-line description stored in the calculation log.
func FloorSummary(result calculators.FloorResult) string {
	return fmt.Sprintf("%s × %s", calculators.FormatQuantity(result.Required), result.FloorType)
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
