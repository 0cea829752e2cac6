package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

type goalRepository struct {
	pool *pgxpool.Pool
}

// NewGoalRepository returns a Postgres-backed GoalRepository.
func NewGoalRepository(pool *pgxpool.Pool) repository.GoalRepository {
	return &goalRepository{pool: pool}
}

func (r *goalRepository) Upsert(ctx context.Context, goal *domain.MonthlyGoal) error {
	if goal == nil {
		return domain.ErrInvalidPayload
	}
	goal.Period = domain.PeriodStart(goal.Period)

	const query = `
	INSERT INTO monthly_goals (advisor_id, advisor_alias, period, amount, updated_at)
	VALUES ($1, $2, $3, $4, NOW())
	ON CONFLICT (advisor_id, period) DO UPDATE
	SET advisor_alias = EXCLUDED.advisor_alias,
		amount = EXCLUDED.amount,
		updated_at = NOW()
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		goal.AdvisorID,
		goal.AdvisorAlias,
		goal.Period,
		goal.Amount,
	).Scan(&goal.UpdatedAt); err != nil {
		return classifyStoreError(err)
	}
	return nil
}

func (r *goalRepository) Get(ctx context.Context, advisorID string, period time.Time) (*domain.MonthlyGoal, error) {
	const query = `
	SELECT advisor_id, advisor_alias, period, amount, updated_at
	FROM monthly_goals
	WHERE advisor_id = $1 AND period = $2
	`
	row := r.pool.QueryRow(ctx, query, advisorID, domain.PeriodStart(period))
	return scanGoal(row)
}

func (r *goalRepository) ListForPeriod(ctx context.Context, period time.Time) ([]domain.MonthlyGoal, error) {
	const query = `
	SELECT advisor_id, advisor_alias, period, amount, updated_at
	FROM monthly_goals
	WHERE period = $1
	ORDER BY advisor_alias
	`
	rows, err := r.pool.Query(ctx, query, domain.PeriodStart(period))
	if err != nil {
		return nil, classifyStoreError(err)
	}
	defer rows.Close()

	var goals []domain.MonthlyGoal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *goal)
	}
	return goals, classifyStoreError(rows.Err())
}

func scanGoal(row interface {
	Scan(dest ...interface{}) error
}) (*domain.MonthlyGoal, error) {
	var goal domain.MonthlyGoal
	if err := row.Scan(
		&goal.AdvisorID,
		&goal.AdvisorAlias,
		&goal.Period,
		&goal.Amount,
		&goal.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, classifyStoreError(err)
	}
	return &goal, nil
}
