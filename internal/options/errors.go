package options

import "errors"

var (
	errBadTolerance   = errors.New("options: tolAbs and tolRel must be positive")
	errNegativePeriod = errors.New("options: update periods must be non-negative")
)
