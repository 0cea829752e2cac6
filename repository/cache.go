package repository

import (
	"context"

	"github.com/funneldesk/backend/domain"
)

// LeadCache is a short-lived read cache for filtered lead listings. Entries
// are keyed by (generation, filter fingerprint); every successful lead write
// bumps the generation, so a read issued after a write can never be served
// from an entry older than that write.
type LeadCache interface {
	Generation(ctx context.Context) (int64, error)
	Bump(ctx context.Context) error
	Get(ctx context.Context, generation int64, fingerprint string) ([]domain.Lead, bool)
	Set(ctx context.Context, generation int64, fingerprint string, leads []domain.Lead)
}
