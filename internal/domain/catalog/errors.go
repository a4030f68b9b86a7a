package catalog

import "errors"

// ErrInvalidRankTable is returned by NewRankTable for unusable ladders.
var ErrInvalidRankTable = errors.New("invalid rank table")
