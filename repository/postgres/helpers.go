package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/funneldesk/backend/domain"
)

const defaultListLimit = 5000

func clampLimit(limit int) int {
	if limit <= 0 || limit > 10000 {
		return defaultListLimit
	}
	return limit
}

// classifyStoreError maps infrastructure failures onto the domain taxonomy.
// Credential failures are distinguished so the usecase layer can refresh and
// retry once; connection-class failures surface as UNAVAILABLE; anything else
// is returned untouched for the caller to map.
func classifyStoreError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "28000" || pgErr.Code == "28P01":
			return domain.WrapError(domain.ErrCodeUnauthorized, "store rejected credentials", domain.ErrCredentialExpired)
		case len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "53" || pgErr.Code[:2] == "57"):
			return domain.WrapError(domain.ErrCodeUnavailable, "store connection failure", domain.ErrStoreUnavailable)
		}
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrCodeUnavailable, "store call timed out", domain.ErrStoreUnavailable)
	}
	return err
}
