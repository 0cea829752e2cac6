package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository returns a Postgres-backed AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) repository.AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) AppendEvents(ctx context.Context, events []domain.TransitionEvent) error {
	if len(events) == 0 {
		return nil
	}

	const query = `
	INSERT INTO lead_events (id, lead_id, advisor_id, actor_id, from_status, to_status, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, ev := range events {
		batch.Queue(query,
			ev.ID,
			ev.LeadID,
			ev.AdvisorID,
			ev.ActorID,
			string(ev.FromStatus),
			string(ev.ToStatus),
			ev.OccurredAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return classifyStoreError(err)
		}
	}
	return nil
}
