// Package admins implements the admin credential store. Admin accounts are
// created by seeding only; there is no registration path.
package admins

import "time"

// Admin represents an administrative account with its assigned role set.
type Admin struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
