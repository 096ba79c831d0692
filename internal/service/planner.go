package service

import (
	"fmt"
	"strings"

	"sidopi/internal/model"

	"github.com/shopspring/decimal"
)

// Per-category application base rates in liters (or kg) per hectare.
// An unknown category is an error, never a silent default.
var baseRates = map[string]decimal.Decimal{
	model.CategoryInsektisida: decimal.NewFromFloat(1.5),
	model.CategoryFungisida:   decimal.NewFromFloat(2.0),
	model.CategoryHerbisida:   decimal.NewFromFloat(3.0),
	model.CategoryBakterisida: decimal.NewFromFloat(1.0),
}

// wasteFactor is the fixed 10% overage allowance on every plan
var wasteFactor = decimal.NewFromFloat(1.10)

// severePests are OPT known for explosive outbreaks; their presence bumps
// the intensity factor one extra step
var severePests = map[string]bool{
	"wereng coklat": true,
	"blas":          true,
	"kresek":        true,
	"ulat grayak":   true,
}

// discreteUnits cannot be dispensed fractionally; planned quantities in
// these units are rounded up to whole numbers
var discreteUnits = map[string]bool{
	"botol":  true,
	"sachet": true,
	"pak":    true,
	"karung": true,
	"dus":    true,
}

// IntensityFactor scales the application rate by infestation pressure:
// 1.0 for a single reported pest, +0.1 per additional pest, +0.1 when any
// reported pest is in the severe set, capped at 1.5.
func IntensityFactor(pestTypes []string) decimal.Decimal {
	if len(pestTypes) == 0 {
		return decimal.NewFromInt(1)
	}

	factor := decimal.NewFromInt(1)
	step := decimal.NewFromFloat(0.1)
	factor = factor.Add(step.Mul(decimal.NewFromInt(int64(len(pestTypes) - 1))))

	for _, p := range pestTypes {
		if severePests[normalizePest(p)] {
			factor = factor.Add(step)
			break
		}
	}

	cap := decimal.NewFromFloat(1.5)
	if factor.GreaterThan(cap) {
		return cap
	}
	return factor
}

// PlanQuantity computes the recommended application quantity:
//
//	affectedArea × baseRate(category) × intensityFactor(pestTypes) × 1.10
//
// rounded to the precision of the medicine's unit (two decimals for
// measurable units, whole numbers rounded up for discrete ones).
func PlanQuantity(affectedArea float64, category string, pestTypes []string, unit string) (decimal.Decimal, error) {
	if affectedArea <= 0 {
		return decimal.Zero, fmt.Errorf("%w: affected area must be positive", ErrMissingRequiredFields)
	}

	rate, ok := baseRates[strings.ToLower(strings.TrimSpace(category))]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown medicine category %q", category)
	}

	qty := decimal.NewFromFloat(affectedArea).
		Mul(rate).
		Mul(IntensityFactor(pestTypes)).
		Mul(wasteFactor)

	if discreteUnits[strings.ToLower(strings.TrimSpace(unit))] {
		return qty.RoundUp(0), nil
	}
	return qty.Round(2), nil
}
