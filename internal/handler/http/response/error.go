package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/auth"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/staff"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/lock"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrMissingClaims):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInsufficientAccess):
		Forbidden(w, err.Error())

	// Staff and shift errors
	case errors.Is(err, staff.ErrStaffNotFound):
		NotFound(w, "Staff not found")
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, shift.ErrInvalidDateFormat):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrShiftIDRequired):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, payroll.ErrNoPayrollData):
		NotFound(w, "No shifts found for this period")

	// Leave domain errors
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrBalanceExists):
		Conflict(w, "Leave balance already exists for this year")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrStartDateInFuture), errors.Is(err, leave.ErrUnknownPolicyVersion):
		BadRequest(w, err.Error(), nil)

	// A concurrent run holds the lock for too long
	case errors.Is(err, lock.ErrNotAcquired):
		Conflict(w, "Another run for the same period is in progress")

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
