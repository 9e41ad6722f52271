package calculators

import (
	"fmt"
	"sort"
)

const (
	groutKgPerM2    = 0.5
	adhesiveKgPerM2 = 1.5
)

type FloorType string

const (
	FloorCeramic   FloorType = "ceramico"
	FloorPorcelain FloorType = "porcelanato"
	FloorLaminate  FloorType = "laminado"
	FloorVinyl     FloorType = "vinilico"
	FloorWood      FloorType = "madeira"
	FloorStone     FloorType = "pedra"
)

type FloorCalculator struct {
	WasteFactors map[FloorType]float64
}

func NewFloorCalculator() *FloorCalculator {
	return &FloorCalculator{
		WasteFactors: map[FloorType]float64{
			FloorCeramic:   0.10,
			FloorPorcelain: 0.08,
			FloorLaminate:  0.05,
			FloorVinyl:     0.05,
			FloorWood:      0.15,
			FloorStone:     0.15,
		},
	}
}

type FloorResult struct {
	QuantityResult
	FloorType     FloorType `json:"floor_type"`
	WasteFraction float64   `json:"waste_fraction"`
	GroutKg       float64   `json:"grout_kg"`
	AdhesiveKg    float64   `json:"adhesive_kg"`
}

// Types lists the known floor types in a stable order.
func (fc *FloorCalculator) Types() []FloorType {
	types := make([]FloorType, 0, len(fc.WasteFactors))
	for t := range fc.WasteFactors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// WasteFor returns the waste factor of floorType, or fallback when the type is unknown.
func (fc *FloorCalculator) WasteFor(floorType FloorType, fallback float64) float64 {
	if w, ok := fc.WasteFactors[floorType]; ok {
		return w
	}
	return fallback
}

// Calculate returns whole boxes of flooring for the surface, where boxCoverage
// is the area one box covers.
func (fc *FloorCalculator) Calculate(surface SurfaceSpec, floorType FloorType, boxCoverage, fallbackWaste float64) (FloorResult, error) {
	if !nonNegative(fallbackWaste) {
		return FloorResult{}, fmt.Errorf("%w: waste fraction must not be negative, got %v", ErrInvalidInput, fallbackWaste)
	}
	waste := fc.WasteFor(floorType, fallbackWaste)

	qty, err := Compute(surface, MaterialProfile{
		CoverageRatePerCoat: boxCoverage,
		Coats:               1,
		WasteFraction:       waste,
		Unit:                UnitUnits,
	})
	if err != nil {
		return FloorResult{}, err
	}

	return FloorResult{
		QuantityResult: qty,
		FloorType:      floorType,
		WasteFraction:  waste,
		GroutKg:        ceilTo(qty.TotalArea*groutKgPerM2, 0.1),
		AdhesiveKg:     ceilTo(qty.TotalArea*adhesiveKgPerM2, 0.1),
	}, nil
}
