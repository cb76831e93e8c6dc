package services

import "errors"

// Sentinel errors returned by services so handlers can map outcomes to HTTP
// status codes without parsing error text. Anything else that comes out of
// a service is an internal failure and must not reach the client verbatim.
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidPassword    = errors.New("password does not meet the policy")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
)
