package handler

import (
	"errors"
	"net/http"

	"sidopi/internal/service"
)

// statusForError maps service sentinel errors to HTTP status codes so every
// handler reports them consistently
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrMedicineNotFound),
		errors.Is(err, service.ErrFarmerGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnauthorizedAction):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidApprovalData),
		errors.Is(err, service.ErrMissingRequiredFields),
		errors.Is(err, service.ErrInvalidSubmissionType),
		errors.Is(err, service.ErrMedicineInactive):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
