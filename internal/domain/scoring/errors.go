package scoring

import "errors"

// ErrUnknownMetric is returned for ids missing from the catalog.
var ErrUnknownMetric = errors.New("unknown metric")
