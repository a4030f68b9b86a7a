package simulate

import "errors"

// Sentinel errors.
var (
	ErrInvalidConfig = errors.New("invalid simulation config")
	ErrMismatch      = errors.New("dashboard points differ from local scoring")
)
