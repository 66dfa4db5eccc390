package staff

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnsetRate is how the staff table stores an enhanced or night rate that was never configured.
const UnsetRate = "—"

type Staff struct {
	ID     string
	Name   string
	Email  *string
	Role   string
	Site   string
	Status string

	StandardRate decimal.Decimal
	// EnhancedRate and NightRate are nil when the column holds UnsetRate.
	EnhancedRate *decimal.Decimal
	NightRate    *decimal.Decimal

	// Raw column values, kept for audit snapshots.
	EnhancedRateRaw string
	NightRateRaw    string

	StartDate *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ParseRate reads a stored rate column. Empty, UnsetRate and unparsable
// values all read as unset.
func ParseRate(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "£"))
	if raw == "" || raw == UnsetRate {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}
