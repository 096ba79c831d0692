package service

import (
	"github.com/shopspring/decimal"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// Warnings emitted when a sub-score crosses the medium threshold
const (
	WarnStockInsufficient = "stock insufficient for full request"
	WarnStockTight        = "available stock barely covers the request"
	WarnExpiry30Days      = "medicine expires within 30 days"
	WarnLowEffectiveness  = "low effectiveness against reported pests"
	WarnHighRiskChoice    = "optimal choice carries high overall risk"
)

// expiryHorizonDays is the distance at which expiry stops contributing risk
const expiryHorizonDays = 180

// RiskInputs carries the already-fetched facts the assessor needs; the
// assessor itself performs no I/O
type RiskInputs struct {
	RequestedQuantity decimal.Decimal
	AvailableStock    decimal.Decimal
	DaysToExpiry      int // earliest unexpired candidate lot; <= 0 means expired or none
	MatchScore        float64
}

// RiskAssessment is the aggregated verdict over one selected medicine
type RiskAssessment struct {
	StockRisk         string   `json:"stock_risk"`
	ExpiryRisk        string   `json:"expiry_risk"`
	EffectivenessRisk string   `json:"effectiveness_risk"`
	OverallRisk       string   `json:"overall_risk"`
	Warnings          []string `json:"warnings"`
}

// AssessRisk combines stock, expiry and effectiveness risk into one verdict.
// Each sub-score is normalized to [0,1] and mapped to low/medium/high; the
// overall level is the arithmetic mean of the three, same thresholds.
func AssessRisk(in RiskInputs) RiskAssessment {
	stock := stockRiskScore(in.RequestedQuantity, in.AvailableStock)
	expiry := expiryRiskScore(in.DaysToExpiry)
	effectiveness := 1 - clamp01(in.MatchScore/100)
	overall := (stock + expiry + effectiveness) / 3

	assessment := RiskAssessment{
		StockRisk:         riskLevel(stock),
		ExpiryRisk:        riskLevel(expiry),
		EffectivenessRisk: riskLevel(effectiveness),
		OverallRisk:       riskLevel(overall),
	}

	if in.RequestedQuantity.GreaterThan(in.AvailableStock) {
		assessment.Warnings = append(assessment.Warnings, WarnStockInsufficient)
	} else if stock >= 0.66 {
		assessment.Warnings = append(assessment.Warnings, WarnStockTight)
	}
	if in.DaysToExpiry <= 30 {
		assessment.Warnings = append(assessment.Warnings, WarnExpiry30Days)
	}
	if effectiveness >= 0.66 {
		assessment.Warnings = append(assessment.Warnings, WarnLowEffectiveness)
	}

	return assessment
}

// stockRiskScore rises with the requested/available ratio: 0 when stock
// dwarfs the request, 1 when the request meets or exceeds stock. Zero
// available stock is maximum risk.
func stockRiskScore(requested, available decimal.Decimal) float64 {
	if available.LessThanOrEqual(decimal.Zero) {
		return 1
	}
	ratio, _ := requested.Div(available).Float64()
	return clamp01(ratio)
}

// expiryRiskScore is 1 at (or past) expiry and decays linearly to 0 at the
// 180-day horizon
func expiryRiskScore(daysToExpiry int) float64 {
	if daysToExpiry <= 0 {
		return 1
	}
	if daysToExpiry >= expiryHorizonDays {
		return 0
	}
	return 1 - float64(daysToExpiry)/expiryHorizonDays
}

func riskLevel(score float64) string {
	switch {
	case score < 0.33:
		return RiskLow
	case score < 0.66:
		return RiskMedium
	}
	return RiskHigh
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
