package model

import "errors"

// ErrInvalidDateKey is returned when a string is not a YYYY-MM-DD date.
var ErrInvalidDateKey = errors.New("invalid date key")
