package auth

import "errors"

var (
	// ErrMissingToken is returned when the request carries no bearer token.
	ErrMissingToken = errors.New("missing Authorization header")

	// ErrMalformedHeader is returned when the Authorization header is not "Bearer <token>".
	ErrMalformedHeader = errors.New("invalid Authorization header format, expected 'Bearer <token>'")

	// ErrInvalidToken is returned when the token fails signature, expiry or claim checks.
	ErrInvalidToken = errors.New("invalid or expired token")
)
