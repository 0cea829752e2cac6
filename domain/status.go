package domain

// Status is the funnel stage of a lead. The vocabulary is closed; free-form
// strings never enter the domain layer.
type Status string

const (
	StatusCancelled     Status = "cancelled"
	StatusApproach      Status = "approach"
	StatusProposal      Status = "proposal"
	StatusDocumentation Status = "documentation"
	StatusWon           Status = "won"
)

// statusRank orders stages by funnel progress. Cancelled ranks below
// Approach so a cancelled-after-progress lead never counts as advancement.
var statusRank = map[Status]int{
	StatusCancelled:     0,
	StatusApproach:      1,
	StatusProposal:      2,
	StatusDocumentation: 3,
	StatusWon:           4,
}

// AllStatuses lists the vocabulary in progression order.
func AllStatuses() []Status {
	return []Status{StatusApproach, StatusProposal, StatusDocumentation, StatusWon, StatusCancelled}
}

// Valid reports whether s belongs to the closed vocabulary.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the funnel-progress rank of s. Unknown statuses rank 0.
func (s Status) Rank() int {
	return statusRank[s]
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", NewError(ErrCodeInvalid, "unknown status "+raw)
	}
	return s, nil
}
