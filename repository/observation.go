package repository

import (
	"context"
	"time"

	"github.com/funneldesk/backend/domain"
)

// ObservationFilter scopes an observation listing.
type ObservationFilter struct {
	AdvisorID          string
	PendingOnly        bool
	CreatedFrom        *time.Time
	CreatedToExclusive *time.Time
}

type ObservationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Observation, error)
	// List returns observations ordered by creation time descending.
	List(ctx context.Context, filter ObservationFilter) ([]domain.Observation, error)
	Create(ctx context.Context, obs *domain.Observation) (*domain.Observation, error)
	// SetDone persists the done flag together with its completion metadata;
	// clearing metadata when done is false.
	SetDone(ctx context.Context, id string, done bool, doneAt *time.Time, doneBy string) error
	Delete(ctx context.Context, id string) error
}
