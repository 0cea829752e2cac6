package domain

import (
	"strings"
	"time"
)

// User represents an authenticated identity: an advisor, or an admin with
// cross-advisor rights.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email,omitempty"`
	Alias        string    `json:"alias"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"created_at"`
}

// AliasFromEmail derives the advisor alias shown on leads: the local part of
// the login email.
func AliasFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
