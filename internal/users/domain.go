// Package users implements the end-user credential store and account lifecycle.
package users

import "time"

// Status tracks the moderation state of a user account.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusSuspended Status = "Suspended"
)

// ValidStatus reports whether s names a known account status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusSuspended:
		return true
	}
	return false
}

// User represents an end-user account.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
