package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/funneldesk/backend/usecase"
)

// Refresher re-establishes pooled connections after the store reports an
// expired credential. Resetting the pool forces every subsequent acquire to
// authenticate from scratch with the current configuration.
type Refresher struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewRefresher(pool *pgxpool.Pool, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher{pool: pool, logger: logger}
}

func (r *Refresher) Refresh(ctx context.Context) error {
	if r == nil || r.pool == nil {
		return nil
	}
	r.pool.Reset()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.pool.Ping(pingCtx); err != nil {
		r.logger.Error("credential refresh ping failed", zap.Error(err))
		return err
	}
	r.logger.Info("store credentials refreshed")
	return nil
}

var _ usecase.CredentialRefresher = (*Refresher)(nil)
