package calculators

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// packaging sizes are compared on a grid of 1/1000 of a unit
	sizeScale = 1000
	// above this many grid points the bulk is filled with the largest package
	maxSearchStates = 100_000
	maxRequired     = 1e12
	// MaxPackageOptions bounds how many package sizes one search may mix.
	MaxPackageOptions = 16
)

type PackageOption struct {
	Label string          `json:"label"`
	Size  float64         `json:"size"`
	Price decimal.Decimal `json:"price"`
}

type PackageLine struct {
	Option   PackageOption `json:"option"`
	Quantity int           `json:"quantity"`
}

type PackagingPlan struct {
	Items     []PackageLine   `json:"items"`
	TotalSize float64         `json:"total_size"`
	Leftover  float64         `json:"leftover"`
	Packages  int             `json:"packages"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// Summary renders the plan as "2 × 18 L + 1 × 3,6 L".
func (p PackagingPlan) Summary() string {
	if len(p.Items) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.Items))
	for _, line := range p.Items {
		parts = append(parts, fmt.Sprintf("%d × %s", line.Quantity, line.Option.DisplayName()))
	}
	return strings.Join(parts, " + ")
}

func (o PackageOption) DisplayName() string {
	if o.Label != "" {
		return o.Label
	}
	return FormatQuantity(o.Size)
}

// LiterPackages turns plain sizes into unpriced options labelled in liters.
func LiterPackages(sizes []float64) []PackageOption {
	options := make([]PackageOption, 0, len(sizes))
	for _, size := range sizes {
		options = append(options, PackageOption{
			Label: FormatQuantity(size) + " L",
			Size:  size,
			Price: decimal.Zero,
		})
	}
	return options
}

// FormatQuantity prints a number with a decimal comma and no trailing zeros.
func FormatQuantity(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}

// RecommendPackaging picks the combination of packages that covers required
// with the least leftover. Ties go to fewer packages, then to the lower cost.
func RecommendPackaging(required float64, options []PackageOption) (PackagingPlan, error) {
	if len(options) == 0 {
		return PackagingPlan{}, fmt.Errorf("%w: no package options", ErrInvalidInput)
	}
	if len(options) > MaxPackageOptions {
		return PackagingPlan{}, fmt.Errorf("%w: at most %d package options, got %d", ErrInvalidInput, MaxPackageOptions, len(options))
	}
	if math.IsNaN(required) || math.IsInf(required, 0) {
		return PackagingPlan{}, fmt.Errorf("%w: required quantity must be finite, got %v", ErrInvalidInput, required)
	}
	if required > maxRequired {
		return PackagingPlan{}, fmt.Errorf("%w: required quantity %v is too large", ErrInvalidInput, required)
	}

	sizes := make([]int64, len(options))
	for i, opt := range options {
		if !positive(opt.Size) {
			return PackagingPlan{}, fmt.Errorf("%w: package size must be positive, got %v", ErrInvalidInput, opt.Size)
		}
		if opt.Size > maxRequired {
			return PackagingPlan{}, fmt.Errorf("%w: package size %v is too large", ErrInvalidInput, opt.Size)
		}
		if opt.Price.IsNegative() {
			return PackagingPlan{}, fmt.Errorf("%w: package price must not be negative, got %s", ErrInvalidInput, opt.Price)
		}
		sizes[i] = int64(math.Round(opt.Size * sizeScale))
		if sizes[i] == 0 {
			return PackagingPlan{}, fmt.Errorf("%w: package size %v is below the %v resolution", ErrInvalidInput, opt.Size, 1.0/sizeScale)
		}
	}

	if required <= 0 {
		return PackagingPlan{Items: []PackageLine{}, TotalCost: decimal.Zero}, nil
	}

	g := sizes[0]
	for _, s := range sizes[1:] {
		g = gcd(g, s)
	}
	units := make([]int, len(sizes))
	largest := 0
	for i, s := range sizes {
		units[i] = int(s / g)
		if units[i] > units[largest] ||
			(units[i] == units[largest] && options[i].Price.LessThan(options[largest].Price)) {
			largest = i
		}
	}

	// the search table spans target plus the largest package, so sizes of
	// very different scale cannot share one grid
	if units[largest] > maxSearchStates {
		return PackagingPlan{}, fmt.Errorf("%w: package sizes %v and %v differ too much in scale",
			ErrInvalidInput, FormatQuantity(smallestSize(options)), FormatQuantity(options[largest].Size))
	}

	targetScaled := int64(math.Ceil(required*sizeScale - 1e-6))
	target := int((targetScaled + g - 1) / g)

	counts := make([]int, len(options))
	if target > maxSearchStates {
		bulk := (target - maxSearchStates + units[largest] - 1) / units[largest]
		counts[largest] += bulk
		target -= bulk * units[largest]
	}

	for i, n := range solveExact(target, units, options) {
		counts[i] += n
	}

	return buildPlan(required, options, counts), nil
}

// solveExact finds, over exact sums of package units, the smallest sum not
// below target, preferring fewer packages and then lower cost for that sum.
func solveExact(target int, units []int, options []PackageOption) []int {
	maxUnit := 0
	for _, u := range units {
		if u > maxUnit {
			maxUnit = u
		}
	}

	n := target + maxUnit
	count := make([]int, n)
	cost := make([]decimal.Decimal, n)
	last := make([]int, n)
	for a := 1; a < n; a++ {
		count[a] = -1
	}

	for a := 1; a < n; a++ {
		for i, u := range units {
			if u > a || count[a-u] < 0 {
				continue
			}
			c := count[a-u] + 1
			p := cost[a-u].Add(options[i].Price)
			if count[a] < 0 || c < count[a] || (c == count[a] && p.LessThan(cost[a])) {
				count[a] = c
				cost[a] = p
				last[a] = i
			}
		}
	}

	result := make([]int, len(units))
	if target <= 0 {
		return result
	}
	best := -1
	for a := target; a < n; a++ {
		if count[a] >= 0 {
			best = a
			break
		}
	}
	for a := best; a > 0; a -= units[last[a]] {
		result[last[a]]++
	}
	return result
}

func buildPlan(required float64, options []PackageOption, counts []int) PackagingPlan {
	plan := PackagingPlan{Items: []PackageLine{}, TotalCost: decimal.Zero}
	for i, n := range counts {
		if n == 0 {
			continue
		}
		plan.Items = append(plan.Items, PackageLine{Option: options[i], Quantity: n})
		plan.TotalSize += options[i].Size * float64(n)
		plan.Packages += n
		plan.TotalCost = plan.TotalCost.Add(options[i].Price.Mul(decimal.NewFromInt(int64(n))))
	}
	sort.SliceStable(plan.Items, func(a, b int) bool {
		return plan.Items[a].Option.Size > plan.Items[b].Option.Size
	})
	plan.TotalSize = round(plan.TotalSize, 3)
	plan.Leftover = round(math.Max(0, plan.TotalSize-required), 3)
	return plan
}

func smallestSize(options []PackageOption) float64 {
	smallest := options[0].Size
	for _, opt := range options[1:] {
		smallest = math.Min(smallest, opt.Size)
	}
	return smallest
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
