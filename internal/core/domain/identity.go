package domain

import (
	"strings"
	"time"
)

// Identity is the snapshot of an authenticated account as reported by the
// identity service. Holders treat it as immutable.
type Identity struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Account is the identity service's stored credential record.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the public snapshot of the account.
func (a *Account) Identity() *Identity {
	return &Identity{ID: a.ID, Email: a.Email, DisplayName: a.DisplayName}
}

// NormalizeEmail is the canonical form the identity service stores: trimmed
// and lowercased. Email comparisons go through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
