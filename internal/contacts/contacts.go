// Package contacts implements the penalty ground-contact model (spec.md
// §4.1): a normal spring-damper plus a three-regime regularised friction
// law, blended smoothly to zero as a contact frame rises out of the ground.
// It is a from-scratch port of Engine::contactDynamics in the original
// engine's Engine.cc, generalised to the teacher's own error/config idioms.
package contacts

import (
	"math"

	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// Options are the contacts.* config group (spec.md §6.2). Options.Validate
// checks the stiffness, damping and the two regularisation scales; the
// friction coefficients are not checked.
type Options struct {
	Stiffness         float64 `yaml:"stiffness"`
	Damping           float64 `yaml:"damping"`
	FrictionDry       float64 `yaml:"frictionDry"`
	FrictionViscous   float64 `yaml:"frictionViscous"`
	DryFrictionVelEps float64 `yaml:"dryFrictionVelEps"`
	TransitionEps     float64 `yaml:"transitionEps"`
}

// DefaultOptions mirror the original engine's stock contact parameters.
func DefaultOptions() Options {
	return Options{
		Stiffness:         1.0e6,
		Damping:           2.0e3,
		FrictionDry:       0.8,
		FrictionViscous:   0.5,
		DryFrictionVelEps: 1.0e-2,
		TransitionEps:     1.0e-3,
	}
}

// Validate enforces spec.md §6.2's positivity requirements on the
// regularisation scales; a zero or negative epsilon divides by zero in
// tangentialFrictionCoeff / the blending law.
func (o Options) Validate() error {
	if o.Stiffness < 0 || o.Damping < 0 {
		return errNegativePenalty
	}
	if o.DryFrictionVelEps <= 0 {
		return errBadDryFrictionEps
	}
	if o.TransitionEps <= 0 {
		return errBadTransitionEps
	}
	return nil
}

// tangentialFrictionCoeff evaluates the three-regime regularised friction
// law of spec.md §4.1: a linear wedge through the origin for very slow
// tangential slip, a linear bridge up to 1.5*eps, then the constant viscous
// coefficient.
func tangentialFrictionCoeff(speed float64, o Options) float64 {
	eps := o.DryFrictionVelEps
	switch {
	case speed <= eps:
		return (speed / eps) * o.FrictionDry
	case speed < 1.5*eps:
		return -2.0*speed*(o.FrictionDry-o.FrictionViscous)/eps + 3.0*o.FrictionDry - 2.0*o.FrictionViscous
	default:
		return o.FrictionViscous
	}
}

const tangentialForceClamp = 1e5

// Evaluate computes the contact wrench for a single contact frame, given
// its world-frame placement (position + velocity) and the fixed placement
// of that frame relative to its parent joint. It returns the zero wrench
// whenever the frame is above ground (pz >= 0), matching spec.md §4.1's
// "contribute zero" rule.
func Evaluate(frame, jointFrame rigidbody.FramePlacement, o Options) rigidbody.Wrench {
	pz := frame.Pos[2]
	if pz >= 0 {
		return rigidbody.Wrench{}
	}

	var damping float64
	if frame.Vel[2] < 0 {
		damping = -o.Damping * frame.Vel[2]
	}
	fz := -o.Stiffness*pz + damping

	vx, vy := frame.Vel[0], frame.Vel[1]
	speed := math.Sqrt(vx*vx + vy*vy)

	forceWorld := [3]float64{0, 0, fz}
	if speed > 1e-12 {
		mu := tangentialFrictionCoeff(speed, o)
		forceWorld[0] = clamp(-(vx/speed)*mu*fz, -tangentialForceClamp, tangentialForceClamp)
		forceWorld[1] = clamp(-(vy/speed)*mu*fz, -tangentialForceClamp, tangentialForceClamp)
	}

	// Re-express the world-frame force at the parent joint frame's origin:
	// rotate into the joint frame's basis, then generate the moment arm
	// from the joint-frame-relative translation of the contact point.
	forceJoint := rotateInverse(frame.Rot, forceWorld)
	forceJoint = rotate(jointFrame.Rot, forceJoint)
	momentJoint := cross(jointFrame.Pos, forceJoint)

	blend := math.Tanh(2 * (-pz) / o.TransitionEps)

	return rigidbody.Wrench{
		forceJoint[0] * blend, forceJoint[1] * blend, forceJoint[2] * blend,
		momentJoint[0] * blend, momentJoint[1] * blend, momentJoint[2] * blend,
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func rotate(r [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		r[0][0]*v[0] + r[0][1]*v[1] + r[0][2]*v[2],
		r[1][0]*v[0] + r[1][1]*v[1] + r[1][2]*v[2],
		r[2][0]*v[0] + r[2][1]*v[1] + r[2][2]*v[2],
	}
}

func rotateInverse(r [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		r[0][0]*v[0] + r[1][0]*v[1] + r[2][0]*v[2],
		r[0][1]*v[0] + r[1][1]*v[1] + r[2][1]*v[2],
		r[0][2]*v[0] + r[1][2]*v[1] + r[2][2]*v[2],
	}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
