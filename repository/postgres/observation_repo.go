package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

type observationRepository struct {
	pool *pgxpool.Pool
}

// NewObservationRepository returns a Postgres-backed ObservationRepository.
func NewObservationRepository(pool *pgxpool.Pool) repository.ObservationRepository {
	return &observationRepository{pool: pool}
}

const observationColumns = `id, advisor_id, advisor_alias, client, message, done, done_at, done_by, created_by, created_at`

func (r *observationRepository) GetByID(ctx context.Context, id string) (*domain.Observation, error) {
	query := `
	SELECT ` + observationColumns + `
	FROM observations
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanObservation(row)
}

func (r *observationRepository) List(ctx context.Context, filter repository.ObservationFilter) ([]domain.Observation, error) {
	query := `
	SELECT ` + observationColumns + `
	FROM observations
	WHERE ($1 = '' OR advisor_id = $1)
	  AND (NOT $2 OR done = FALSE)
	  AND ($3::timestamptz IS NULL OR created_at >= $3)
	  AND ($4::timestamptz IS NULL OR created_at < $4)
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query,
		filter.AdvisorID,
		filter.PendingOnly,
		filter.CreatedFrom,
		filter.CreatedToExclusive,
	)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	defer rows.Close()

	var observations []domain.Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		observations = append(observations, *obs)
	}
	return observations, classifyStoreError(rows.Err())
}

func (r *observationRepository) Create(ctx context.Context, obs *domain.Observation) (*domain.Observation, error) {
	if obs == nil {
		return nil, domain.ErrInvalidPayload
	}
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO observations (id, advisor_id, advisor_alias, client, message, created_by)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		obs.ID,
		obs.AdvisorID,
		obs.AdvisorAlias,
		obs.Client,
		obs.Message,
		obs.CreatedBy,
	).Scan(&obs.CreatedAt); err != nil {
		return nil, classifyStoreError(err)
	}
	return obs, nil
}

func (r *observationRepository) SetDone(ctx context.Context, id string, done bool, doneAt *time.Time, doneBy string) error {
	const query = `
	UPDATE observations
	SET done = $2,
		done_at = $3,
		done_by = NULLIF($4, '')
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, done, doneAt, doneBy)
	if err != nil {
		return classifyStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrObservationNotFound
	}
	return nil
}

func (r *observationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM observations WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return classifyStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrObservationNotFound
	}
	return nil
}

func scanObservation(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Observation, error) {
	var obs domain.Observation
	var (
		client *string
		doneBy *string
	)

	if err := row.Scan(
		&obs.ID,
		&obs.AdvisorID,
		&obs.AdvisorAlias,
		&client,
		&obs.Message,
		&obs.Done,
		&obs.DoneAt,
		&doneBy,
		&obs.CreatedBy,
		&obs.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrObservationNotFound
		}
		return nil, classifyStoreError(err)
	}

	if client != nil {
		obs.Client = *client
	}
	if doneBy != nil {
		obs.DoneBy = *doneBy
	}
	return &obs, nil
}
