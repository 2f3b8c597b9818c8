package entity

import "time"

// Contact belongs to exactly one user; every read and mutation is scoped by
// OwnerID.
type Contact struct {
	ID        string
	OwnerID   string
	Name      string
	Email     string
	Phone     string
	Favorite  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
