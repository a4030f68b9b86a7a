package persistence

import "errors"

// Sentinel kinds for persistence errors.
var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrNilProfile      = errors.New("nil profile")
)
