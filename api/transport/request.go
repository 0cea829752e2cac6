package transport

// LeadRequest carries a lead create payload. Amount fields arrive as strings
// so spreadsheet-style input ("12.500,00", "USD 1200") can be normalized
// server-side.
type LeadRequest struct {
	OwnerID         string `json:"owner_id"`
	Advisor         string `json:"advisor"`
	CaptureDate     string `json:"capture_date"`
	Client          string `json:"client"`
	Referrer        string `json:"referrer"`
	Product         string `json:"product"`
	ClientType      string `json:"client_type"`
	Status          string `json:"status"`
	EstimatedAmount string `json:"estimated_amount"`
	RealizedAmount  string `json:"realized_amount"`
	Probability     string `json:"probability"`
	Note            string `json:"note"`
}

// LeadUpdateRequest carries a partial lead edit; nil fields are untouched.
type LeadUpdateRequest struct {
	CaptureDate     *string `json:"capture_date"`
	Client          *string `json:"client"`
	Referrer        *string `json:"referrer"`
	Product         *string `json:"product"`
	ClientType      *string `json:"client_type"`
	Status          *string `json:"status"`
	EstimatedAmount *string `json:"estimated_amount"`
	RealizedAmount  *string `json:"realized_amount"`
	Probability     *int    `json:"probability"`
	Note            *string `json:"note"`
}

// BatchUpdateRequest applies independent edits to several leads at once.
type BatchUpdateRequest struct {
	Edits []BatchEdit `json:"edits"`
}

type BatchEdit struct {
	ID     string            `json:"id"`
	Update LeadUpdateRequest `json:"update"`
}

type DeleteLeadsRequest struct {
	IDs []string `json:"ids"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
}

type ObservationRequest struct {
	AdvisorID    string `json:"advisor_id"`
	AdvisorAlias string `json:"advisor_alias"`
	Client       string `json:"client"`
	Message      string `json:"message"`
}

type MarkDoneRequest struct {
	IDs []string `json:"ids"`
}

// GoalRequest sets an advisor's monthly target. Period takes any day of the
// month; it is normalized to the first.
type GoalRequest struct {
	AdvisorID    string `json:"advisor_id"`
	AdvisorAlias string `json:"advisor_alias"`
	Period       string `json:"period"`
	Amount       string `json:"amount"`
}

type ThresholdsRequest struct {
	RedMax    float64 `json:"red_max"`
	YellowMax float64 `json:"yellow_max"`
}
