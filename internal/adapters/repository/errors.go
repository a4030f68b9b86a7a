package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("key not found")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrClosed        = errors.New("store closed")
	ErrInvalidTable  = errors.New("invalid table name")
)
