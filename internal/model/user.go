package model

import "time"

// User represents a registered account.
//
// Accounts are created either by email/password registration or by GitHub
// OAuth sign-in. For OAuth-created accounts PasswordHash stays empty and
// GitHubID carries GitHub's stable numeric user ID; for password accounts
// GitHubID is nil.
//
// WHY PasswordHash `json:"-"`?
// The hash must never leave the server. The `-` tag tells encoding/json to
// skip the field entirely, so even returning a *User from a handler cannot
// leak it.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
