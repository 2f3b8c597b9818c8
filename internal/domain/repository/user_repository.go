package repository

import (
	"errors"

	"contacthub/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned by Create when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByVerificationToken(token string) (*entity.User, error)

	// UpdateSessionToken overwrites the single session slot; nil clears it.
	UpdateSessionToken(id string, token *string) error
	// SetVerified marks the user verified and clears the verification token.
	SetVerified(id string) error
	UpdateSubscription(id string, tier entity.Subscription) (*entity.User, error)
	UpdateAvatarURL(id string, avatarURL string) error
}
