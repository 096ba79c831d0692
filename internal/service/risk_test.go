package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAssessRiskAllLow(t *testing.T) {
	out := AssessRisk(RiskInputs{
		RequestedQuantity: decimal.NewFromInt(10),
		AvailableStock:    decimal.NewFromInt(100),
		DaysToExpiry:      365,
		MatchScore:        95,
	})

	assert.Equal(t, RiskLow, out.StockRisk)
	assert.Equal(t, RiskLow, out.ExpiryRisk)
	assert.Equal(t, RiskLow, out.EffectivenessRisk)
	assert.Equal(t, RiskLow, out.OverallRisk)
	assert.Empty(t, out.Warnings)
}

func TestAssessRiskInsufficientStock(t *testing.T) {
	out := AssessRisk(RiskInputs{
		RequestedQuantity: decimal.NewFromInt(50),
		AvailableStock:    decimal.NewFromInt(20),
		DaysToExpiry:      365,
		MatchScore:        90,
	})

	assert.Equal(t, RiskHigh, out.StockRisk)
	assert.Contains(t, out.Warnings, WarnStockInsufficient)
}

func TestAssessRiskZeroStock(t *testing.T) {
	out := AssessRisk(RiskInputs{
		RequestedQuantity: decimal.NewFromInt(5),
		AvailableStock:    decimal.Zero,
		DaysToExpiry:      365,
		MatchScore:        90,
	})

	assert.Equal(t, RiskHigh, out.StockRisk)
	assert.Contains(t, out.Warnings, WarnStockInsufficient)
}

func TestAssessRiskTightStock(t *testing.T) {
	// 90% of stock requested: high stock risk band without the shortfall warning
	out := AssessRisk(RiskInputs{
		RequestedQuantity: decimal.NewFromInt(90),
		AvailableStock:    decimal.NewFromInt(100),
		DaysToExpiry:      365,
		MatchScore:        90,
	})

	assert.Equal(t, RiskHigh, out.StockRisk)
	assert.Contains(t, out.Warnings, WarnStockTight)
	assert.NotContains(t, out.Warnings, WarnStockInsufficient)
}

func TestAssessRiskImminentExpiry(t *testing.T) {
	out := AssessRisk(RiskInputs{
		RequestedQuantity: decimal.NewFromInt(10),
		AvailableStock:    decimal.NewFromInt(100),
		DaysToExpiry:      14,
		MatchScore:        90,
	})

	assert.Equal(t, RiskHigh, out.ExpiryRisk)
	assert.Contains(t, out.Warnings, WarnExpiry30Days)
}

func TestAssessRiskExpiryBands(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, RiskHigh},
		{30, RiskHigh},   // score 1 - 30/180 ≈ 0.83
		{90, RiskMedium}, // score 0.5
		{150, RiskLow},   // score ≈ 0.17
		{180, RiskLow},
		{400, RiskLow},
	}
	for _, tt := range tests {
		out := AssessRisk(RiskInputs{
			RequestedQuantity: decimal.NewFromInt(1),
			AvailableStock:    decimal.NewFromInt(100),
			DaysToExpiry:      tt.days,
			MatchScore:        100,
		})
		assert.Equal(t, tt.want, out.ExpiryRisk, "days=%d", tt.days)
	}
}

func TestAssessRiskLowEffectiveness(t *testing.T) {
	out := AssessRisk(RiskInputs{
		RequestedQuantity: decimal.NewFromInt(10),
		AvailableStock:    decimal.NewFromInt(100),
		DaysToExpiry:      365,
		MatchScore:        20,
	})

	assert.Equal(t, RiskHigh, out.EffectivenessRisk)
	assert.Contains(t, out.Warnings, WarnLowEffectiveness)
}

func TestAssessRiskOverallIsMean(t *testing.T) {
	// stock 1.0, expiry 1.0, effectiveness 0.0 → overall (2/3) ≈ 0.67 → high
	out := AssessRisk(RiskInputs{
		RequestedQuantity: decimal.NewFromInt(10),
		AvailableStock:    decimal.Zero,
		DaysToExpiry:      0,
		MatchScore:        100,
	})
	assert.Equal(t, RiskHigh, out.OverallRisk)

	// stock 0, expiry 0, effectiveness 1.0 → overall ≈ 0.33 → medium
	out = AssessRisk(RiskInputs{
		RequestedQuantity: decimal.NewFromInt(1),
		AvailableStock:    decimal.NewFromInt(1000),
		DaysToExpiry:      365,
		MatchScore:        0,
	})
	assert.Equal(t, RiskMedium, out.OverallRisk)
}
