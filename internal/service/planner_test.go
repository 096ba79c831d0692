package service

import (
	"testing"

	"sidopi/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanQuantityBaseline(t *testing.T) {
	// 5.0 ha × 1.5 L/ha × 1.0 × 1.10 = 8.25
	qty, err := PlanQuantity(5.0, model.CategoryInsektisida, []string{"walang sangit"}, "liter")
	require.NoError(t, err)
	assert.True(t, qty.Equal(decimal.NewFromFloat(8.25)), "got %s", qty)
}

func TestPlanQuantityMultiplePests(t *testing.T) {
	// 3 non-severe pests: factor 1.2 → 5.0 × 1.5 × 1.2 × 1.10 = 9.90
	qty, err := PlanQuantity(5.0, model.CategoryInsektisida, []string{"walang sangit", "kutu daun", "thrips"}, "liter")
	require.NoError(t, err)
	assert.True(t, qty.Equal(decimal.NewFromFloat(9.90)), "got %s", qty)
}

func TestPlanQuantitySeverePestBump(t *testing.T) {
	// Single severe pest: factor 1.1 → 5.0 × 1.5 × 1.1 × 1.10 = 9.075 → 9.08
	qty, err := PlanQuantity(5.0, model.CategoryInsektisida, []string{"wereng coklat"}, "liter")
	require.NoError(t, err)
	assert.True(t, qty.Equal(decimal.NewFromFloat(9.08)), "got %s", qty)
}

func TestPlanQuantityDiscreteUnitRoundsUp(t *testing.T) {
	// 8.25 planned in botol must become 9 whole bottles
	qty, err := PlanQuantity(5.0, model.CategoryInsektisida, []string{"walang sangit"}, "botol")
	require.NoError(t, err)
	assert.True(t, qty.Equal(decimal.NewFromInt(9)), "got %s", qty)
}

func TestPlanQuantityUnknownCategory(t *testing.T) {
	_, err := PlanQuantity(5.0, "rodentisida", []string{"tikus"}, "liter")
	assert.Error(t, err)
}

func TestPlanQuantityNonPositiveArea(t *testing.T) {
	_, err := PlanQuantity(0, model.CategoryInsektisida, []string{"walang sangit"}, "liter")
	assert.ErrorIs(t, err, ErrMissingRequiredFields)

	_, err = PlanQuantity(-2, model.CategoryInsektisida, []string{"walang sangit"}, "liter")
	assert.ErrorIs(t, err, ErrMissingRequiredFields)
}

func TestPlanQuantityMonotonicInArea(t *testing.T) {
	small, err := PlanQuantity(2.0, model.CategoryFungisida, []string{"blas"}, "liter")
	require.NoError(t, err)
	large, err := PlanQuantity(4.0, model.CategoryFungisida, []string{"blas"}, "liter")
	require.NoError(t, err)
	assert.True(t, large.GreaterThan(small))
}

func TestIntensityFactorCap(t *testing.T) {
	// 6 pests incl. a severe one would be 1.0 + 0.5 + 0.1 = 1.6, capped at 1.5
	pests := []string{"wereng coklat", "walang sangit", "kutu daun", "thrips", "belalang", "tungau"}
	factor := IntensityFactor(pests)
	assert.True(t, factor.Equal(decimal.NewFromFloat(1.5)), "got %s", factor)
}

func TestIntensityFactorSinglePest(t *testing.T) {
	factor := IntensityFactor([]string{"walang sangit"})
	assert.True(t, factor.Equal(decimal.NewFromInt(1)), "got %s", factor)
}

func TestIntensityFactorSevereCountedOnce(t *testing.T) {
	// Two severe pests add the severe bump once: 1.0 + 0.1 + 0.1 = 1.2
	factor := IntensityFactor([]string{"wereng coklat", "blas"})
	assert.True(t, factor.Equal(decimal.NewFromFloat(1.2)), "got %s", factor)
}
