package bot

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"tintas-bot/internal/calculators"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxDimension = 1000.0
	maxWalls     = 100
	maxCoats     = 3
)

var errBadNumber = errors.New("not a number")

// ParseNumber reads a decimal number written with either a comma or a dot.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", errBadNumber, s)
	}
	return v, nil
}

// ParseNumbers splits text on spaces or "x" and parses exactly n numbers.
func ParseNumbers(text string, n int) ([]float64, error) {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsSpace(r) || r == 'x' || r == '×' || r == ';'
	})
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(fields))
	}

	values := make([]float64, n)
	for i, f := range fields {
		v, err := ParseNumber(f)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ParsePaintDimensions reads "largura altura paredes".
func ParsePaintDimensions(text string) (width, height float64, walls int, err error) {
	values, err := ParseNumbers(text, 3)
	if err != nil {
		return 0, 0, 0, err
	}
	if err := validateDimension(values[0]); err != nil {
		return 0, 0, 0, err
	}
	if err := validateDimension(values[1]); err != nil {
		return 0, 0, 0, err
	}
	if values[2] < 1 || values[2] > maxWalls || values[2] != math.Trunc(values[2]) {
		return 0, 0, 0, fmt.Errorf("walls must be a whole number between 1 and %d", maxWalls)
	}
	return values[0], values[1], int(values[2]), nil
}

// ParseFloorDimensions reads "largura comprimento".
func ParseFloorDimensions(text string) (width, length float64, err error) {
	values, err := ParseNumbers(text, 2)
	if err != nil {
		return 0, 0, err
	}
	for _, v := range values {
		if err := validateDimension(v); err != nil {
			return 0, 0, err
		}
	}
	return values[0], values[1], nil
}

func ParseOpenings(text string) (float64, error) {
	if strings.TrimSpace(text) == btnNoOpenings {
		return 0, nil
	}
	v, err := ParseNumber(text)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("openings must not be negative")
	}
	return v, nil
}

func ParseCoats(text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < 1 || v > maxCoats {
		return 0, fmt.Errorf("coats must be between 1 and %d", maxCoats)
	}
	return v, nil
}

func ParseBoxCoverage(text string) (float64, error) {
	v, err := ParseNumber(text)
	if err != nil {
		return 0, err
	}
	if v <= 0 || v > maxDimension {
		return 0, fmt.Errorf("box coverage must be positive")
	}
	return v, nil
}

// ParseFloorType matches a button label or a typed name, ignoring case and accents.
func ParseFloorType(text string, known []calculators.FloorType) (calculators.FloorType, bool) {
	normalized := foldAccents(strings.ToLower(strings.TrimSpace(text)))
	for _, t := range known {
		if normalized == string(t) {
			return t, true
		}
	}
	return "", false
}

func validateDimension(v float64) error {
	if v <= 0 || v > maxDimension {
		return fmt.Errorf("dimension must be between 0 and %v m, got %v", maxDimension, v)
	}
	return nil
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
