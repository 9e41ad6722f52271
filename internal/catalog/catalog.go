// Package catalog loads product seed files.
//
// Sizes and coverage may be written the way shop catalogs print them:
// "3.6L", "900ml", "14 m²/L".
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"tintas-bot/internal/storage"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

type File struct {
	Currency string        `yaml:"currency"`
	Products []ProductSpec `yaml:"products"`
}

type ProductSpec struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name"`
	Brand    string        `yaml:"brand"`
	Category string        `yaml:"category"`
	Coverage string        `yaml:"coverage"`
	Active   *bool         `yaml:"active"`
	Packages []PackageSpec `yaml:"packages"`
}

type PackageSpec struct {
	Label string `yaml:"label"`
	Size  string `yaml:"size"`
	Price string `yaml:"price"`
}

func Load(path string) ([]storage.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func Parse(r io.Reader) ([]storage.Product, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Products))
	products := make([]storage.Product, 0, len(file.Products))
	for i, spec := range file.Products {
		p, err := spec.toProduct()
		if err != nil {
			return nil, fmt.Errorf("product #%d (%s): %w", i+1, spec.ID, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate product id %q", ErrInvalidCatalog, p.ID)
		}
		seen[p.ID] = true
		products = append(products, p)
	}
	return products, nil
}

func (s ProductSpec) toProduct() (storage.Product, error) {
	if strings.TrimSpace(s.ID) == "" {
		return storage.Product{}, fmt.Errorf("%w: missing id", ErrInvalidCatalog)
	}
	if strings.TrimSpace(s.Name) == "" {
		return storage.Product{}, fmt.Errorf("%w: missing name", ErrInvalidCatalog)
	}

	coverage, err := ParseCoverage(s.Coverage)
	if err != nil {
		return storage.Product{}, err
	}

	active := true
	if s.Active != nil {
		active = *s.Active
	}

	p := storage.Product{
		ID:       s.ID,
		Name:     s.Name,
		Brand:    s.Brand,
		Category: s.Category,
		Coverage: coverage,
		Active:   active,
		Packages: make([]storage.Package, 0, len(s.Packages)),
	}

	for _, pkg := range s.Packages {
		size, err := ParseSize(pkg.Size)
		if err != nil {
			return storage.Product{}, err
		}
		price := decimal.Zero
		if pkg.Price != "" {
			price, err = decimal.NewFromString(pkg.Price)
			if err != nil {
				return storage.Product{}, fmt.Errorf("%w: price %q: %v", ErrInvalidCatalog, pkg.Price, err)
			}
			if price.IsNegative() {
				return storage.Product{}, fmt.Errorf("%w: negative price %s", ErrInvalidCatalog, price)
			}
		}
		label := pkg.Label
		if label == "" {
			label = pkg.Size
		}
		p.Packages = append(p.Packages, storage.Package{
			ProductID: s.ID,
			Label:     label,
			Size:      size,
			Price:     price,
		})
	}

	return p, nil
}

// ParseSize reads a package size in liters; "900ml" is 0.9.
func ParseSize(s string) (float64, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	scale := 1.0
	switch {
	case strings.HasSuffix(raw, "ml"):
		raw = strings.TrimSuffix(raw, "ml")
		scale = 0.001
	case strings.HasSuffix(raw, "l"):
		raw = strings.TrimSuffix(raw, "l")
	}

	v, err := parseNumber(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: package size %q", ErrInvalidCatalog, s)
	}
	return v * scale, nil
}

// ParseCoverage reads the leading number of strings like "14 m²/L".
func ParseCoverage(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: missing coverage", ErrInvalidCatalog)
	}
	v, err := parseNumber(fields[0])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: coverage %q", ErrInvalidCatalog, s)
	}
	return v, nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}
