// Package controller defines the AbstractController boundary the simulation
// core invokes at every controller break-point (spec.md §6.1), plus a
// handful of concrete controllers merged from the teacher's two duplicate
// control packages (internal/control and internal/controllers): None, PID,
// LQR, and Manual. Every concrete controller here embeds NopInternal so it
// only needs to implement compute_command unless it also wants passive
// internal dynamics.
package controller

import (
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// AbstractController is the external collaborator spec.md §6.1 describes.
// The simulation core borrows one for the lifetime of a run; it must be
// deterministic for a given (t, q, v) and safe to call synchronously from
// the outer loop.
type AbstractController interface {
	// ComputeCommand returns a torque command of length model.NMotors().
	ComputeCommand(model rigidbody.Model, t float64, q, v dynamo.State) (dynamo.Control, error)

	// InternalDynamics returns a passive generalised force of length
	// model.Nv() — joint friction, flexibility, and similar effects that
	// are not part of the commanded torque.
	InternalDynamics(model rigidbody.Model, t float64, q, v dynamo.State) (dynamo.State, error)

	// Reset clears any internal state. Called at the start of every run.
	Reset()
}

// NopInternal is embedded by controllers with no passive internal
// dynamics; it returns a zero vector of the correct length.
type NopInternal struct{}

func (NopInternal) InternalDynamics(model rigidbody.Model, t float64, q, v dynamo.State) (dynamo.State, error) {
	return make(dynamo.State, model.Nv()), nil
}

// Saturate clamps each entry of cmd to the model's per-actuated-joint
// effort limits (spec.md §4.3). len(cmd) must equal len(limits).
func Saturate(cmd dynamo.Control, limits []float64) dynamo.Control {
	out := make(dynamo.Control, len(cmd))
	for i, u := range cmd {
		limit := limits[i]
		switch {
		case u > limit:
			out[i] = limit
		case u < -limit:
			out[i] = -limit
		default:
			out[i] = u
		}
	}
	return out
}

// Scatter places a saturated command (length nmotors, ordered by
// ActuatedVelocityIdx) into a full-length generalised-force vector of size
// nv (spec.md §4.3 "scattered into a full-length generalised-force vector
// at the actuated-joint rows").
func Scatter(cmd dynamo.Control, actuatedVelocityIdx []int, nv int) dynamo.State {
	out := make(dynamo.State, nv)
	for i, row := range actuatedVelocityIdx {
		if i < len(cmd) {
			out[row] = cmd[i]
		}
	}
	return out
}
