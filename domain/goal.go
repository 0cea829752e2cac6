package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyGoal is a target revenue figure for one advisor and one calendar
// month. At most one goal exists per (advisor, period) pair.
type MonthlyGoal struct {
	AdvisorID    string          `json:"advisor_id"`
	AdvisorAlias string          `json:"advisor_alias"`
	Period       time.Time       `json:"period"`
	Amount       decimal.Decimal `json:"amount"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Validate checks the goal invariants before an upsert.
func (g *MonthlyGoal) Validate() error {
	if g == nil || g.AdvisorID == "" {
		return ErrInvalidPayload
	}
	if g.Period.IsZero() {
		return NewError(ErrCodeInvalid, "goal period is required")
	}
	if g.Amount.IsNegative() {
		return NewError(ErrCodeInvalid, "goal amount must not be negative")
	}
	return nil
}

// PeriodStart truncates t to the first day of its month, the canonical key
// for monthly goals.
func PeriodStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
