package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/funneldesk/backend/internal/infrastructure/journal"
	"github.com/funneldesk/backend/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// DrainerConfig controls how the journal is shipped to the audit table.
type DrainerConfig struct {
	Schedule  string
	BatchSize int
}

// JournalDrainer periodically moves journaled transition events into the
// relational audit table. Inserts are idempotent on event id, so a crash
// between the insert and the journal delete only produces a harmless replay.
type JournalDrainer struct {
	store   *journal.Store
	audit   repository.AuditRepository
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     DrainerConfig
}

func NewJournalDrainer(
	store *journal.Store,
	audit repository.AuditRepository,
	monitor ConnectionHealth,
	logger *zap.Logger,
	cfg DrainerConfig,
) *JournalDrainer {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 1m"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	jd := &JournalDrainer{
		store:   store,
		audit:   audit,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(),
	}

	_, _ = jd.cron.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := jd.Drain(ctx); err != nil {
			jd.logger.Error("journal drain failed", zap.Error(err))
		}
	})

	return jd
}

// Start launches the cron scheduler.
func (jd *JournalDrainer) Start() {
	if jd == nil || jd.cron == nil {
		return
	}
	jd.cron.Start()
	jd.logger.Info("journal drainer started")
}

// Stop gracefully stops the scheduler.
func (jd *JournalDrainer) Stop(ctx context.Context) {
	if jd == nil || jd.cron == nil {
		return
	}
	stopCtx := jd.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	jd.logger.Info("journal drainer stopped")
}

// Drain ships one batch of journaled events synchronously.
func (jd *JournalDrainer) Drain(ctx context.Context) error {
	if jd == nil || jd.store == nil || jd.audit == nil {
		return nil
	}
	if jd.monitor != nil && !jd.monitor.IsOnline() {
		jd.logger.Debug("skipping journal drain (offline)")
		return nil
	}

	events, err := jd.store.Batch(jd.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	if err := jd.audit.AppendEvents(ctx, events); err != nil {
		return err
	}
	if err := jd.store.Remove(events); err != nil {
		jd.logger.Warn("failed to purge drained events", zap.Error(err))
	}
	jd.logger.Debug("journal drained", zap.Int("events", len(events)))
	return nil
}

// Size returns the number of events waiting in the journal.
func (jd *JournalDrainer) Size() int {
	if jd == nil || jd.store == nil {
		return 0
	}
	size, err := jd.store.Size()
	if err != nil {
		return 0
	}
	return size
}
