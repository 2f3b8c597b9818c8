package repository

import "contacthub/internal/domain/entity"

// ListFilter narrows a contact listing. Favorite is a tri-state: nil means
// no filtering.
type ListFilter struct {
	Page     int
	Limit    int
	Favorite *bool
}

// ContactRepository defines owner-scoped contact persistence. Every method
// takes the owning user id; rows belonging to other users are invisible.
type ContactRepository interface {
	Create(c *entity.Contact) error
	GetByID(ownerID, id string) (*entity.Contact, error)
	List(ownerID string, f ListFilter) ([]entity.Contact, error)
	Update(c *entity.Contact) error
	UpdateFavorite(ownerID, id string, favorite bool) (*entity.Contact, error)
	Delete(ownerID, id string) error
}
