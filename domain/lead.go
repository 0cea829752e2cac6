package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client-type tags carried by a lead.
const (
	ClientTypeNew       = "new"
	ClientTypeRecurring = "recurring"
	ClientTypePortfolio = "portfolio_visit"
)

// ClientTypes lists the allowed client-type tags.
func ClientTypes() []string {
	return []string{ClientTypeNew, ClientTypeRecurring, ClientTypePortfolio}
}

// Lead represents one sales opportunity tracked by one advisor.
type Lead struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"owner_id"`
	Advisor         string           `json:"advisor"`
	CaptureDate     time.Time        `json:"capture_date"`
	Client          string           `json:"client"`
	Referrer        string           `json:"referrer"`
	Product         string           `json:"product"`
	ClientType      string           `json:"client_type"`
	Status          Status           `json:"status"`
	EstimatedAmount decimal.Decimal  `json:"estimated_amount"`
	RealizedAmount  *decimal.Decimal `json:"realized_amount,omitempty"`
	Probability     *int             `json:"probability,omitempty"`
	Note            string           `json:"note,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// IsWon reports whether the lead closed as a client.
func (l *Lead) IsWon() bool {
	return l != nil && l.Status == StatusWon
}

// Validate checks the write-time invariants that do not depend on a prior
// state: a known status, a non-negative estimated amount, a probability in
// [0,100], and a positive realized amount whenever the lead is Won.
func (l *Lead) Validate() error {
	if l == nil {
		return ErrInvalidPayload
	}
	if !l.Status.Valid() {
		return NewError(ErrCodeInvalid, "unknown status "+string(l.Status))
	}
	if l.EstimatedAmount.IsNegative() {
		return NewError(ErrCodeInvalid, "estimated amount must not be negative")
	}
	if l.Probability != nil && (*l.Probability < 0 || *l.Probability > 100) {
		return NewError(ErrCodeInvalid, "probability must be between 0 and 100")
	}
	if l.IsWon() {
		return requireRealized(l.RealizedAmount)
	}
	return nil
}

// ValidateTransition guards a status change. Any stage may move to any other
// stage, including backwards; the only hard rule is that a lead cannot be
// marked Won without a positive realized amount. The realized argument is the
// value the lead would hold after the write.
func ValidateTransition(current, proposed Status, realized *decimal.Decimal) error {
	if !proposed.Valid() {
		return NewError(ErrCodeInvalid, "unknown status "+string(proposed))
	}
	if proposed == StatusWon {
		return requireRealized(realized)
	}
	return nil
}

func requireRealized(realized *decimal.Decimal) error {
	if realized == nil || !realized.IsPositive() {
		return NewError(ErrCodeInvalid, "a positive realized amount is required to mark a lead won")
	}
	return nil
}

// NormalizeAmount parses a user-supplied money value. Thousands separators,
// currency markers and stray text are stripped. Malformed input yields nil
// rather than an error so a bad cell never aborts a batch.
func NormalizeAmount(raw string) *decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}
	var b strings.Builder
	b.Grow(len(s) + 1)
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return nil
	}
	if neg {
		clean = "-" + clean
	}
	val, err := decimal.NewFromString(clean)
	if err != nil {
		return nil
	}
	return &val
}

// NormalizeProbability parses a closing probability, returning nil when the
// input cannot be read or falls outside [0,100].
func NormalizeProbability(raw string) *int {
	d := NormalizeAmount(raw)
	if d == nil {
		return nil
	}
	p := int(d.IntPart())
	if p < 0 || p > 100 {
		return nil
	}
	return &p
}
