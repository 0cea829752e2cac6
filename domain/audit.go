package domain

import "time"

// TransitionEvent records one status change applied to a lead. Transitions
// are permissive (any stage to any stage), so the audit trail is the only
// place a backward move leaves a mark.
type TransitionEvent struct {
	ID         string    `json:"id"`
	LeadID     string    `json:"lead_id"`
	AdvisorID  string    `json:"advisor_id"`
	ActorID    string    `json:"actor_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	OccurredAt time.Time `json:"occurred_at"`
}
