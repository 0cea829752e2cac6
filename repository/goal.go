package repository

import (
	"context"
	"time"

	"github.com/funneldesk/backend/domain"
)

type GoalRepository interface {
	// Upsert inserts or replaces the goal keyed on (advisor, period).
	Upsert(ctx context.Context, goal *domain.MonthlyGoal) error
	Get(ctx context.Context, advisorID string, period time.Time) (*domain.MonthlyGoal, error)
	ListForPeriod(ctx context.Context, period time.Time) ([]domain.MonthlyGoal, error)
}
