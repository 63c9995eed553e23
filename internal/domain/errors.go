package domain

import "errors"

// Sentinel errors shared by services and repositories.
// Controllers map them to HTTP status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrDuplicate    = errors.New("already exists")
	ErrPersistence  = errors.New("persistence failure")
	ErrNotification = errors.New("notification not delivered")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)
