package goal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
	"github.com/funneldesk/backend/usecase"
)

type UseCase struct {
	goals     repository.GoalRepository
	users     repository.UserRepository
	refresher usecase.CredentialRefresher
	logger    *zap.Logger
}

func New(goals repository.GoalRepository, users repository.UserRepository, refresher usecase.CredentialRefresher, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		goals:     goals,
		users:     users,
		refresher: refresher,
		logger:    logger,
	}
}

// Upsert sets an advisor's target for a month, replacing any previous value
// for the same advisor and period. Admin only.
func (uc *UseCase) Upsert(ctx context.Context, goal *domain.MonthlyGoal, actorID string) (*domain.MonthlyGoal, error) {
	admin, err := uc.users.IsAdmin(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, domain.ErrAdminOnly
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	goal.Period = domain.PeriodStart(goal.Period)

	err = usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		return uc.goals.Upsert(ctx, goal)
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// Get returns the advisor's goal for the month containing the given instant.
func (uc *UseCase) Get(ctx context.Context, advisorID string, period time.Time) (*domain.MonthlyGoal, error) {
	var goal *domain.MonthlyGoal
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		goal, opErr = uc.goals.Get(ctx, advisorID, domain.PeriodStart(period))
		return opErr
	})
	return goal, err
}

// ListForPeriod returns every advisor's goal for the month containing the
// given instant.
func (uc *UseCase) ListForPeriod(ctx context.Context, period time.Time) ([]domain.MonthlyGoal, error) {
	var goals []domain.MonthlyGoal
	err := usecase.WithCredentialRetry(ctx, uc.refresher, uc.logger, func(ctx context.Context) error {
		var opErr error
		goals, opErr = uc.goals.ListForPeriod(ctx, domain.PeriodStart(period))
		return opErr
	})
	return goals, err
}
