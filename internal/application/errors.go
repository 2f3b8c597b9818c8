package application

import "errors"

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("email or password is wrong")
	ErrNotVerified        = errors.New("email is not verified")
	ErrAlreadyVerified    = errors.New("verification has already been passed")
	ErrEmailInUse         = errors.New("email in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrContactNotFound    = errors.New("contact not found")
	ErrInvalidTier        = errors.New("invalid subscription")
	ErrInvalidImage       = errors.New("invalid image")
	ErrMailUnavailable    = errors.New("mail delivery unavailable")
)
