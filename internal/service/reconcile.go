package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidateApprovedQuantity ties an approved quantity to both the original
// request and live stock. Rules apply in order and the first violation wins:
// non-negative, then capped by the requested quantity, then capped by
// available stock. Used for every item of an APPROVED/PARTIALLY_APPROVED
// decision; one failing item aborts the whole transition.
func ValidateApprovedQuantity(requested, available, approved decimal.Decimal) error {
	if approved.IsNegative() {
		return fmt.Errorf("%w: approved quantity cannot be negative", ErrInvalidApprovalData)
	}
	if approved.GreaterThan(requested) {
		return fmt.Errorf("%w: approved quantity cannot exceed requested quantity", ErrInvalidApprovalData)
	}
	if approved.GreaterThan(available) {
		return fmt.Errorf("%w: approved quantity exceeds available stock", ErrInvalidApprovalData)
	}
	return nil
}
