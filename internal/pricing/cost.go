// Package pricing computes rental costs, suggested price ranges and GPU
// performance tiers.
package pricing

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// CalculateRentalCost returns hourlyPrice × hours rounded to cents.
// Rounding is half away from zero on the exact decimal value, so 1.005 × 1 = 1.01.
// Negative or non-finite inputs yield 0.
func CalculateRentalCost(hourlyPrice, hours float64) float64 {
	if !validAmount(hourlyPrice) || !validAmount(hours) {
		return 0
	}

	cost := decimal.NewFromFloat(hourlyPrice).
		Mul(decimal.NewFromFloat(hours)).
		Round(2)

	return cost.InexactFloat64()
}

func validAmount(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
}

// PriceRange is a suggested hourly price band in USD
type PriceRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Suggested float64 `json:"suggested"`
}

// DefaultPriceRange is returned for models missing from the reference table
var DefaultPriceRange = PriceRange{Min: 0.10, Max: 1.00, Suggested: 0.50}

// suggestedPrices is keyed by CanonicalModelKey
var suggestedPrices = map[string]PriceRange{
	"h200":            {Min: 3.00, Max: 6.00, Suggested: 4.50},
	"h100":            {Min: 2.00, Max: 4.50, Suggested: 3.20},
	"a100-80gb":       {Min: 1.40, Max: 3.00, Suggested: 2.10},
	"a100":            {Min: 1.10, Max: 2.50, Suggested: 1.60},
	"l40s":            {Min: 0.80, Max: 1.60, Suggested: 1.10},
	"l40":             {Min: 0.70, Max: 1.40, Suggested: 0.95},
	"rtx-4090":        {Min: 0.40, Max: 1.00, Suggested: 0.74},
	"rtx-4080":        {Min: 0.30, Max: 0.80, Suggested: 0.55},
	"rtx-a6000":       {Min: 0.45, Max: 1.00, Suggested: 0.70},
	"rtx-3090":        {Min: 0.20, Max: 0.60, Suggested: 0.38},
	"a10":             {Min: 0.30, Max: 0.80, Suggested: 0.50},
	"v100":            {Min: 0.25, Max: 0.70, Suggested: 0.45},
	"t4":              {Min: 0.10, Max: 0.40, Suggested: 0.22},
	"instinct-mi300x": {Min: 2.50, Max: 5.00, Suggested: 3.60},
}

// vendorPrefixes are dropped from the front of a canonical key
var vendorPrefixes = []string{"nvidia-", "amd-", "geforce-"}

// CanonicalModelKey lowercases a model name, joins its words with hyphens
// and drops leading vendor names: "NVIDIA RTX 4090" becomes "rtx-4090".
func CanonicalModelKey(model string) string {
	key := strings.Join(strings.Fields(strings.ToLower(model)), "-")
	for stripped := true; stripped; {
		stripped = false
		for _, prefix := range vendorPrefixes {
			if strings.HasPrefix(key, prefix) {
				key = strings.TrimPrefix(key, prefix)
				stripped = true
			}
		}
	}
	return key
}

// SuggestedPrice returns the reference price range for a GPU model.
// It never fails; unknown models get DefaultPriceRange.
func SuggestedPrice(model string) PriceRange {
	if pr, ok := suggestedPrices[CanonicalModelKey(model)]; ok {
		return pr
	}
	return DefaultPriceRange
}
