package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateApprovedQuantity(t *testing.T) {
	d := decimal.NewFromFloat

	tests := []struct {
		name      string
		requested float64
		available float64
		approved  float64
		wantMsg   string
	}{
		{"full approval", 10, 20, 10, ""},
		{"partial approval", 10, 20, 6, ""},
		{"zero approval rejects the line", 10, 20, 0, ""},
		{"negative", 10, 20, -1, "cannot be negative"},
		{"exceeds requested", 10, 20, 11, "cannot exceed requested quantity"},
		{"exceeds stock", 10, 6, 8, "exceeds available stock"},
		{"negative wins over other violations", 10, 6, -5, "cannot be negative"},
		{"requested cap checked before stock", 10, 6, 12, "cannot exceed requested quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateApprovedQuantity(d(tt.requested), d(tt.available), d(tt.approved))
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidApprovalData)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidateApprovedQuantityEqualToStock(t *testing.T) {
	// Approving exactly the available stock is legal
	err := ValidateApprovedQuantity(decimal.NewFromInt(10), decimal.NewFromInt(8), decimal.NewFromInt(8))
	assert.NoError(t, err)
}
