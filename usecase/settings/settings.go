package settings

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

// Store holds the runtime-adjustable traffic-light thresholds. Values are
// clamped on the way in, so readers always see a consistent band layout.
type Store struct {
	users  repository.UserRepository
	logger *zap.Logger

	mu      sync.RWMutex
	current domain.Thresholds
}

func NewStore(initial domain.Thresholds, users repository.UserRepository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		users:   users,
		logger:  logger,
		current: initial.Clamp(),
	}
}

// Thresholds returns the bands currently in effect.
func (s *Store) Thresholds() domain.Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the bands. Admin only; the stored value is the clamped
// form, which is also returned.
func (s *Store) Update(ctx context.Context, t domain.Thresholds, actorID string) (domain.Thresholds, error) {
	admin, err := s.users.IsAdmin(ctx, actorID)
	if err != nil {
		return domain.Thresholds{}, err
	}
	if !admin {
		return domain.Thresholds{}, domain.ErrAdminOnly
	}

	clamped := t.Clamp()
	s.mu.Lock()
	s.current = clamped
	s.mu.Unlock()
	s.logger.Info("alert thresholds updated",
		zap.Float64("red_max", clamped.RedMax),
		zap.Float64("yellow_max", clamped.YellowMax))
	return clamped, nil
}
