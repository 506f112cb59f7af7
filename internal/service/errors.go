package service

import "errors"

// Sentinel errors mapped to HTTP statuses at the handler layer. Anything the
// handlers cannot match is treated as an internal fault: logged server-side,
// reported to the client as a generic message.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrNotFound           = errors.New("not found")
)
