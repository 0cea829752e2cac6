package repository

import (
	"context"

	"github.com/funneldesk/backend/domain"
)

// AuditRepository persists drained status-transition events.
type AuditRepository interface {
	AppendEvents(ctx context.Context, events []domain.TransitionEvent) error
}
