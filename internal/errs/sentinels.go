// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadCredentials indicates the password did not match the stored hash.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrUserNotFound indicates login was attempted for an unknown account.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUserName indicates the username is already registered.
	ErrDuplicateUserName = errors.New("username already exists")

	// ErrDuplicateEmail indicates the mail address is already registered.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInvalidToken covers malformed, expired and tampered tokens uniformly.
	ErrInvalidToken = errors.New("invalid token")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmptyCart indicates an order was placed from a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrValidation indicates malformed or missing input; wrap with detail.
	ErrValidation = errors.New("validation")
)
