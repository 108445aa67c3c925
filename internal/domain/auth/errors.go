package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid code/email or password")
	ErrNoSession          = errors.New("no active session")
)
