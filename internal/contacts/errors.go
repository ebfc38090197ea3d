package contacts

import "errors"

var (
	// errNegativePenalty indicates a negative stiffness or damping coefficient.
	errNegativePenalty = errors.New("contacts: stiffness and damping must be non-negative")

	// errBadDryFrictionEps indicates dryFrictionVelEps is not strictly positive.
	errBadDryFrictionEps = errors.New("contacts: dryFrictionVelEps must be > 0")

	// errBadTransitionEps indicates transitionEps is not strictly positive.
	errBadTransitionEps = errors.New("contacts: transitionEps must be > 0")
)
