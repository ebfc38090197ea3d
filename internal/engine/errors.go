package engine

import (
	"errors"
	"fmt"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Sentinel error kinds spec.md §7 names. Wrapped with fmt.Errorf("%w: ...")
// so callers can errors.Is against the kind while still getting a
// descriptive message, matching internal/dynamo's sentinel-error pattern.
var (
	// ErrBadInput is spec.md §7's BadInput kind: a caller-supplied
	// argument fails validation without mutating engine state.
	ErrBadInput = errors.New("engine: bad input")

	// ErrInitFailed is spec.md §7's InitFailed kind: a dependent
	// component was not initialised, or the engine was used out of
	// lifecycle order.
	ErrInitFailed = errors.New("engine: not initialised")

	// ErrGeneric is spec.md §7's Generic kind: an exception propagated
	// from a controller callback during initialisation validation.
	ErrGeneric = errors.New("engine: controller callback failed during validation")
)

func badInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrBadInput, reason)
}

func initFailed(reason string) error {
	return fmt.Errorf("%w: %s", ErrInitFailed, reason)
}

func generic(cause error) error {
	return fmt.Errorf("%w: %v", ErrGeneric, cause)
}

// fatalStep builds spec.md §7's Fatal (runtime) kind: the step-size
// controller exceeded its failure quota mid-run. It wraps in
// dynamo.SimulationError, the tree-wide carrier for a mid-run failure plus
// the state it happened at, so callers can errors.Is against the stepper's
// own sentinel (itself wrapping dynamo.ErrStepTooSmall) while still
// recovering Step/Time/State for diagnostics. Already-recorded telemetry is
// preserved (spec.md §7 policy) — the caller can still call GetLogData
// after receiving this error.
func fatalStep(step int, t float64, x dynamo.State, cause error) error {
	return &dynamo.SimulationError{Step: step, Time: t, State: x, Wrapped: cause}
}
