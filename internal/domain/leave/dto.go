package leave

import (
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/pkg/validator"
)

type AccrualRequest struct {
	StartDate string  `json:"start_date"`
	AsOfDate  *string `json:"as_of,omitempty"`
}

func (r *AccrualRequest) Validate() error {
	var errs validator.ValidationErrors

	// Start date
	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be YYYY-MM-DD",
		})
	}

	// As-of date
	if r.AsOfDate != nil {
		if _, ok := validator.IsValidDate(*r.AsOfDate); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "as_of",
				Message: "as_of must be YYYY-MM-DD",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AccrualResponse struct {
	StartDate    string `json:"start_date"`
	AsOfDate     string `json:"as_of"`
	HoursAccrued int    `json:"hours_accrued"`
}

type BalanceRequest struct {
	StaffID string `json:"staff_id"`
	Year    int    `json:"year"`
}

func (r *BalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	// Staff ID
	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{
			Field:   "staff_id",
			Message: "staff_id is required",
		})
	}

	// Year
	if r.Year <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a positive integer",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RecordUsageRequest struct {
	StaffID string `json:"staff_id"`
	Year    int    `json:"year"`
	Hours   int    `json:"hours"`
}

func (r *RecordUsageRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StaffID) {
		errs = append(errs, validator.ValidationError{Field: "staff_id", Message: "staff_id is required"})
	}
	if r.Year <= 0 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a positive integer"})
	}
	if r.Hours <= 0 {
		errs = append(errs, validator.ValidationError{Field: "hours", Message: "hours must be a positive integer"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BalanceResponse struct {
	ID               string            `json:"id"`
	StaffID          string            `json:"staff_id"`
	StaffName        string            `json:"staff_name"`
	Year             int               `json:"year"`
	TotalEntitlement int               `json:"total_entitlement"`
	HoursAccrued     int               `json:"hours_accrued"`
	HoursUsed        int               `json:"hours_used"`
	HoursRemaining   int               `json:"hours_remaining"`
	PolicyVersion    int               `json:"policy_version"`
	Accrual          *AccrualBreakdown `json:"accrual,omitempty"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// BatchResult reports a refresh or migration run over a year's balances.
type BatchResult struct {
	Year    int      `json:"year"`
	Total   int      `json:"total"`
	Updated int      `json:"updated"`
	Created int      `json:"created"`
	Skipped []string `json:"skipped,omitempty"`
	Policy  int      `json:"policy_version"`
	Ceiling int      `json:"total_entitlement"`
}
