package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ServingSize is the ordered enum of relative portion sizes.
type ServingSize string

const (
	ServingSmall      ServingSize = "Small"
	ServingMedium     ServingSize = "Medium"
	ServingLarge      ServingSize = "Large"
	ServingExtraLarge ServingSize = "Extra Large"
)

// ServingSizes lists serving sizes from smallest to largest.
var ServingSizes = []ServingSize{ServingSmall, ServingMedium, ServingLarge, ServingExtraLarge}

var servingMultipliers = map[ServingSize]float64{
	ServingSmall:      0.75,
	ServingMedium:     1,
	ServingLarge:      1.5,
	ServingExtraLarge: 2,
}

func (s ServingSize) String() string { return string(s) }

func (s ServingSize) IsValid() bool {
	_, ok := servingMultipliers[s]
	return ok
}

// Multiplier returns the factor applied to a Medium baseline.
func (s ServingSize) Multiplier() float64 {
	return servingMultipliers[s]
}

// ParseServingSize accepts "large", "Extra Large", "extra-large", "xl".
func ParseServingSize(s string) (ServingSize, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	if norm == "xl" {
		return ServingExtraLarge, nil
	}
	for _, size := range ServingSizes {
		if strings.EqualFold(norm, string(size)) {
			return size, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidServing, s)
}

// Quantity is either a serving size or a numeric count (pieces or grams).
// Exactly one of Size and Count is meaningful; Size wins when set.
type Quantity struct {
	Size  ServingSize
	Count float64
}

// Serving returns a serving-size quantity.
func Serving(size ServingSize) Quantity { return Quantity{Size: size} }

// Count returns a numeric quantity.
func Count(n float64) Quantity { return Quantity{Count: n} }

// IsServing reports whether q is expressed as a serving size.
func (q Quantity) IsServing() bool { return q.Size != "" }

// Label renders the human-readable quantity shown next to an entry.
func (q Quantity) Label(unit QuantityUnit) string {
	if q.IsServing() {
		return string(q.Size)
	}
	n := formatNumber(q.Count)
	switch unit {
	case UnitGrams:
		return n + "g"
	case UnitServing:
		if q.Count == 1 {
			return "1 serving"
		}
		return n + " servings"
	default:
		return n + " pcs"
	}
}

func (q Quantity) String() string {
	if q.IsServing() {
		return string(q.Size)
	}
	return formatNumber(q.Count)
}

// MarshalJSON writes serving sizes as strings and counts as numbers.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.IsServing() {
		return json.Marshal(string(q.Size))
	}
	return json.Marshal(q.Count)
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		size, err := ParseServingSize(s)
		if err != nil {
			return err
		}
		*q = Serving(size)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity must be a serving size or a number: %w", err)
	}
	*q = Count(n)
	return nil
}

// ParseQuantity reads a CLI-style quantity: a serving size name or a number.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n <= 0 {
			return Quantity{}, NewValidationError("quantity", "must be > 0")
		}
		return Count(n), nil
	}
	size, err := ParseServingSize(s)
	if err != nil {
		return Quantity{}, err
	}
	return Serving(size), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
