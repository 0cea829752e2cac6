package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/funneldesk/backend/domain"
)

// LeadFilter scopes a lead listing. Zero values mean "no constraint";
// DateToExclusive follows half-open interval semantics.
type LeadFilter struct {
	OwnerID         string
	Advisor         string
	Status          domain.Status
	ClientType      string
	Product         string
	DateFrom        *time.Time
	DateToExclusive *time.Time
	Limit           int
}

// LeadUpdate carries a partial update; nil fields are left untouched.
type LeadUpdate struct {
	CaptureDate     *time.Time
	Client          *string
	Referrer        *string
	Product         *string
	ClientType      *string
	Status          *domain.Status
	EstimatedAmount *decimal.Decimal
	RealizedAmount  *decimal.Decimal
	Probability     *int
	Note            *string
}

// Empty reports whether the update would touch nothing.
func (u LeadUpdate) Empty() bool {
	return u.CaptureDate == nil && u.Client == nil && u.Referrer == nil &&
		u.Product == nil && u.ClientType == nil && u.Status == nil &&
		u.EstimatedAmount == nil && u.RealizedAmount == nil &&
		u.Probability == nil && u.Note == nil
}

type LeadRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	// List returns leads ordered by capture date descending, then creation
	// timestamp descending.
	List(ctx context.Context, filter LeadFilter) ([]domain.Lead, error)
	Create(ctx context.Context, lead *domain.Lead) (*domain.Lead, error)
	Update(ctx context.Context, id string, update LeadUpdate) error
	// DeleteMany removes the given ids, tolerating unknown ones; it returns
	// how many rows were actually deleted. An empty set is a no-op.
	DeleteMany(ctx context.Context, ids []string) (int, error)
	// AdvisorAliases derives alias -> owner identity from the most recent
	// limit leads; the most recent identity wins on alias collision.
	AdvisorAliases(ctx context.Context, limit int) (map[string]string, error)
}
