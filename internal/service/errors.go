package service

import "errors"

// Sentinel errors for expected business conditions. Handlers match them with
// errors.Is to pick HTTP status codes; wrapped variants carry field detail.
var (
	ErrSubmissionNotFound      = errors.New("submission not found")
	ErrMedicineNotFound        = errors.New("medicine not found")
	ErrMedicineInactive        = errors.New("medicine is inactive")
	ErrFarmerGroupNotFound     = errors.New("farmer group not found")
	ErrInvalidSubmissionType   = errors.New("submission type not allowed for this role")
	ErrMissingRequiredFields   = errors.New("missing required fields")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrUnauthorizedAction      = errors.New("unauthorized action")
	ErrInvalidApprovalData     = errors.New("invalid approval data")
)
