package domain

import "time"

// Observation is an admin-authored directive attached to an advisor,
// optionally referencing a client by name.
type Observation struct {
	ID           string     `json:"id"`
	AdvisorID    string     `json:"advisor_id"`
	AdvisorAlias string     `json:"advisor_alias"`
	Client       string     `json:"client,omitempty"`
	Message      string     `json:"message"`
	Done         bool       `json:"done"`
	DoneAt       *time.Time `json:"done_at,omitempty"`
	DoneBy       string     `json:"done_by,omitempty"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

// MarkDone completes the directive, recording when and by whom. Marking an
// already-done observation is a no-op; the return value reports whether the
// state changed.
func (o *Observation) MarkDone(actor string, now time.Time) bool {
	if o == nil || o.Done {
		return false
	}
	o.Done = true
	o.DoneAt = &now
	o.DoneBy = actor
	return true
}

// Reopen clears the done flag and its completion metadata.
func (o *Observation) Reopen() {
	if o == nil {
		return
	}
	o.Done = false
	o.DoneAt = nil
	o.DoneBy = ""
}
