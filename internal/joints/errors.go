package joints

import "errors"

var (
	// errNegativePenalty indicates a negative bound stiffness or damping coefficient.
	errNegativePenalty = errors.New("joints: boundStiffness and boundDamping must be non-negative")

	// errBadTransitionEps indicates boundTransitionEps is not strictly positive.
	errBadTransitionEps = errors.New("joints: boundTransitionEps must be > 0")
)
