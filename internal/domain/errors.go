package domain

import "errors"

// Sentinel errors shared across services and handlers. Handlers map these to
// HTTP statuses; ErrNotFound deliberately covers denied access as well as
// genuine absence.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")

	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidPassword = errors.New("invalid email or password")
	ErrEmptyMemberList = errors.New("workspace needs at least one member")
	ErrLastAdmin       = errors.New("at least one active admin is required")
)
