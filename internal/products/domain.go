// Package products implements product listings, owner-scoped CRUD and the
// cached catalog queries.
package products

import "time"

// Status tracks the moderation state of a product listing.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusSuspended Status = "Suspended"
)

// ValidStatus reports whether s names a known product status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusSuspended:
		return true
	}
	return false
}

// Product represents a listed product owned by a user.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	Status      Status    `json:"status"`
	UserID      int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
