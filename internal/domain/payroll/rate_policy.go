package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/staff"
)

// StandardHoursThreshold is the number of weekly day-hours paid at the standard rate.
const StandardHoursThreshold = 20.0

// RatePolicyName selects how unset enhanced and night rates are filled in.
type RatePolicyName string

const (
	// RatePolicySubstituteStandard pays unset enhanced/night hours at the standard rate.
	RatePolicySubstituteStandard RatePolicyName = "substitute_standard"
	// RatePolicyFixedDefaults pays unset enhanced/night hours at fixed company-wide rates.
	RatePolicyFixedDefaults RatePolicyName = "fixed_defaults"
)

var (
	DefaultFixedEnhancedRate = decimal.RequireFromString("14.00")
	DefaultFixedNightRate    = decimal.RequireFromString("15.00")
)

// RatePolicy is applied to every pay calculation in the service, period and
// single-shift alike.
type RatePolicy struct {
	Name          RatePolicyName
	FixedEnhanced decimal.Decimal
	FixedNight    decimal.Decimal
}

func DefaultRatePolicy() RatePolicy {
	return RatePolicy{
		Name:          RatePolicySubstituteStandard,
		FixedEnhanced: DefaultFixedEnhancedRate,
		FixedNight:    DefaultFixedNightRate,
	}
}

func ParseRatePolicyName(name string) (RatePolicyName, error) {
	switch RatePolicyName(name) {
	case RatePolicySubstituteStandard, RatePolicyFixedDefaults:
		return RatePolicyName(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRatePolicy, name)
	}
}

// Rates are the hourly rates a calculation actually used.
type Rates struct {
	Standard decimal.Decimal `json:"standard"`
	Enhanced decimal.Decimal `json:"enhanced"`
	Night    decimal.Decimal `json:"night"`
}

// Resolve fills in the staff member's rates under the policy. Each
// substitution is reported as a note; a missing rate is never an error.
func (p RatePolicy) Resolve(s staff.Staff) (Rates, []string) {
	var notes []string
	rates := Rates{Standard: s.StandardRate}

	if s.EnhancedRate != nil {
		rates.Enhanced = *s.EnhancedRate
	} else {
		rates.Enhanced = p.fallback(s.StandardRate, p.FixedEnhanced)
		notes = append(notes, fmt.Sprintf("Missing rate: enhanced rate unset for %s, using £%s (%s)", s.Name, rates.Enhanced.StringFixed(2), p.Name))
	}

	if s.NightRate != nil {
		rates.Night = *s.NightRate
	} else {
		rates.Night = p.fallback(s.StandardRate, p.FixedNight)
		notes = append(notes, fmt.Sprintf("Missing rate: night rate unset for %s, using £%s (%s)", s.Name, rates.Night.StringFixed(2), p.Name))
	}

	return rates, notes
}

func (p RatePolicy) fallback(standard, fixed decimal.Decimal) decimal.Decimal {
	if p.Name == RatePolicyFixedDefaults {
		return fixed
	}
	return standard
}

// RawRates snapshots the staff rate columns at calculation time so an audit
// stays explainable after the rates are edited.
type RawRates struct {
	Standard string `json:"standard"`
	Enhanced string `json:"enhanced"`
	Night    string `json:"night"`
	Resolved Rates  `json:"resolved"`
	Policy   string `json:"policy"`
}

func SnapshotRates(s staff.Staff, resolved Rates, policy RatePolicy) RawRates {
	return RawRates{
		Standard: s.StandardRate.StringFixed(2),
		Enhanced: s.EnhancedRateRaw,
		Night:    s.NightRateRaw,
		Resolved: resolved,
		Policy:   string(policy.Name),
	}
}
