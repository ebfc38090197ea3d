// Package stepper implements the ODE stepper state (spec.md §4, C1) and the
// break-point-aware adaptive integration driver (spec.md §4.5, C5): an
// embedded Dormand-Prince Runge-Kutta wrapped in a step-size controller
// that lands exactly on sensor/controller break-points. Ported from the
// teacher's internal/integrators package, generalised from a single
// combined tolerance to the mixed absolute/relative error norm spec.md
// §4.5 requires, and given exact break-point arithmetic the teacher never
// needed.
package stepper

import "github.com/san-kum/rigidsim/internal/dynamo"

// EvalFunc computes dx/dt at (t, x). Every integrator in this package is
// generic over this signature so it can be exercised directly against
// simple test dynamics, independent of internal/dynamics.Assembler.
type EvalFunc func(t float64, x dynamo.State) (dynamo.State, error)
