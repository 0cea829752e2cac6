package services

import (
	"context"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/internal/infrastructure/journal"
	"github.com/funneldesk/backend/usecase"
)

// AuditRecorder satisfies the use-case recorder port by appending transition
// events to the local journal. The drainer ships them to the audit table.
type AuditRecorder struct {
	store *journal.Store
}

func NewAuditRecorder(store *journal.Store) *AuditRecorder {
	return &AuditRecorder{store: store}
}

func (r *AuditRecorder) Record(_ context.Context, event domain.TransitionEvent) error {
	if r == nil || r.store == nil {
		return domain.ErrInvalidPayload
	}
	return r.store.Append(event)
}

var _ usecase.TransitionRecorder = (*AuditRecorder)(nil)
