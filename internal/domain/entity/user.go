package entity

import "time"

// Subscription is the billing tier of an account.
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// Valid reports whether s is one of the known tiers.
func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// User is the aggregate root for the account domain.
// Password holds a bcrypt hash; the plaintext is never persisted.
// SessionToken is the single live session slot: set on login, cleared on
// logout, overwritten by a newer login. VerificationToken is a one-time
// value cleared once verification succeeds.
type User struct {
	ID                string
	Email             string
	Password          string
	Subscription      Subscription
	AvatarURL         string
	SessionToken      *string
	Verified          bool
	VerificationToken *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
