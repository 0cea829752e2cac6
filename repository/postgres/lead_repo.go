package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository returns a Postgres-backed implementation of LeadRepository.
func NewLeadRepository(pool *pgxpool.Pool) repository.LeadRepository {
	return &leadRepository{pool: pool}
}

const leadColumns = `id, owner_id, advisor, capture_date, client, referrer, product, client_type, status, estimated_amount, realized_amount, probability, note, created_at`

func (r *leadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	query := `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanLead(row)
}

func (r *leadRepository) List(ctx context.Context, filter repository.LeadFilter) ([]domain.Lead, error) {
	query := `
	SELECT ` + leadColumns + `
	FROM leads
	WHERE ($1 = '' OR owner_id = $1)
	  AND ($2 = '' OR advisor = $2)
	  AND ($3 = '' OR status = $3)
	  AND ($4 = '' OR client_type = $4)
	  AND ($5 = '' OR product = $5)
	  AND ($6::date IS NULL OR capture_date >= $6)
	  AND ($7::date IS NULL OR capture_date < $7)
	ORDER BY capture_date DESC, created_at DESC
	LIMIT $8
	`
	rows, err := r.pool.Query(ctx, query,
		filter.OwnerID,
		filter.Advisor,
		string(filter.Status),
		filter.ClientType,
		filter.Product,
		filter.DateFrom,
		filter.DateToExclusive,
		clampLimit(filter.Limit),
	)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, classifyStoreError(rows.Err())
}

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if lead == nil {
		return nil, domain.ErrInvalidPayload
	}
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO leads (id, owner_id, advisor, capture_date, client, referrer, product, client_type, status, estimated_amount, realized_amount, probability, note)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING created_at
	`

	if err := r.pool.QueryRow(ctx, query,
		lead.ID,
		lead.OwnerID,
		lead.Advisor,
		lead.CaptureDate,
		lead.Client,
		lead.Referrer,
		lead.Product,
		lead.ClientType,
		string(lead.Status),
		lead.EstimatedAmount,
		nullDecimal(lead.RealizedAmount),
		lead.Probability,
		lead.Note,
	).Scan(&lead.CreatedAt); err != nil {
		return nil, classifyStoreError(err)
	}

	return lead, nil
}

func (r *leadRepository) Update(ctx context.Context, id string, update repository.LeadUpdate) error {
	if update.Empty() {
		return nil
	}

	set := make([]string, 0, 10)
	args := make([]interface{}, 0, 11)
	args = append(args, id)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.CaptureDate != nil {
		add("capture_date", *update.CaptureDate)
	}
	if update.Client != nil {
		add("client", *update.Client)
	}
	if update.Referrer != nil {
		add("referrer", *update.Referrer)
	}
	if update.Product != nil {
		add("product", *update.Product)
	}
	if update.ClientType != nil {
		add("client_type", *update.ClientType)
	}
	if update.Status != nil {
		add("status", string(*update.Status))
	}
	if update.EstimatedAmount != nil {
		add("estimated_amount", *update.EstimatedAmount)
	}
	if update.RealizedAmount != nil {
		add("realized_amount", *update.RealizedAmount)
	}
	if update.Probability != nil {
		add("probability", *update.Probability)
	}
	if update.Note != nil {
		add("note", *update.Note)
	}

	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $1", strings.Join(set, ", "))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return classifyStoreError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

func (r *leadRepository) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `DELETE FROM leads WHERE id = ANY($1)`
	tag, err := r.pool.Exec(ctx, query, ids)
	if err != nil {
		return 0, classifyStoreError(err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *leadRepository) AdvisorAliases(ctx context.Context, limit int) (map[string]string, error) {
	const query = `
	SELECT advisor, owner_id
	FROM leads
	ORDER BY created_at DESC
	LIMIT $1
	`
	if limit <= 0 {
		limit = 10000
	}
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var alias, ownerID string
		if err := rows.Scan(&alias, &ownerID); err != nil {
			return nil, err
		}
		// Rows arrive most recent first; the first identity seen wins.
		if alias == "" || ownerID == "" {
			continue
		}
		if _, ok := aliases[alias]; !ok {
			aliases[alias] = ownerID
		}
	}
	return aliases, classifyStoreError(rows.Err())
}

func scanLead(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Lead, error) {
	var lead domain.Lead
	var realized decimal.NullDecimal

	if err := row.Scan(
		&lead.ID,
		&lead.OwnerID,
		&lead.Advisor,
		&lead.CaptureDate,
		&lead.Client,
		&lead.Referrer,
		&lead.Product,
		&lead.ClientType,
		&lead.Status,
		&lead.EstimatedAmount,
		&realized,
		&lead.Probability,
		&lead.Note,
		&lead.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, classifyStoreError(err)
	}

	if realized.Valid {
		v := realized.Decimal
		lead.RealizedAmount = &v
	}
	return &lead, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
