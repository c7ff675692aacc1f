package domain

import "errors"

// Sentinel errors surfaced by the auth core and the user store.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrAccountInactive    = errors.New("account inactive")
	ErrAdminRequired      = errors.New("admin access required")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)
