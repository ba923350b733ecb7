package apperrors

import (
	"errors"
)

var (
	// ErrNoCredential is returned by credential stores when nothing is persisted.
	ErrNoCredential = errors.New("no credential stored")

	// ErrUnauthorized is returned when the server rejects the request as
	// unauthenticated and the refresh protocol could not (or was not allowed to)
	// recover it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionExpired wraps the refresh failure surfaced to every request
	// that waited on the failed refresh cycle.
	ErrSessionExpired = errors.New("session expired")

	ErrValidation = errors.New("request validation failed")

	ErrUserAlreadyExists = errors.New("user already exists")
	ErrLoginFailed       = errors.New("invalid username or password")

	ErrProductNotFound  = errors.New("product not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
)
