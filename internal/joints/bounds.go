// Package joints implements the joint-limit penalty model (spec.md §4.2):
// a spring-damper that switches on smoothly as an actuated joint's position
// crosses its configured bounds. Ported from Engine::boundsDynamics in the
// original engine's Engine.cc.
package joints

import "math"

// Options are the joints.* config group (spec.md §6.2).
type Options struct {
	BoundStiffness     float64 `yaml:"boundStiffness"`
	BoundDamping       float64 `yaml:"boundDamping"`
	BoundTransitionEps float64 `yaml:"boundTransitionEps"`
}

// DefaultOptions mirror the original engine's stock joint-limit parameters.
func DefaultOptions() Options {
	return Options{
		BoundStiffness:     1.0e5,
		BoundDamping:       1.0e3,
		BoundTransitionEps: 1.0e-2,
	}
}

// Validate enforces the positivity of the transition scale, mirroring
// contacts.Options.Validate: a zero epsilon divides by zero in the
// blending law.
func (o Options) Validate() error {
	if o.BoundStiffness < 0 || o.BoundDamping < 0 {
		return errNegativePenalty
	}
	if o.BoundTransitionEps <= 0 {
		return errBadTransitionEps
	}
	return nil
}

// Evaluate returns the penalty force for a single actuated joint at
// position q, velocity v, bounded to [qmin, qmax] (spec.md §4.2). It
// returns 0 when the joint is within bounds.
func Evaluate(q, v, qmin, qmax float64, o Options) float64 {
	var force, qerr float64
	switch {
	case q > qmax:
		qerr = q - qmax
		force = -o.BoundStiffness*qerr - o.BoundDamping*math.Max(0, v)
	case q < qmin:
		qerr = qmin - q
		force = o.BoundStiffness*qerr - o.BoundDamping*math.Min(0, v)
	}
	blend := math.Tanh(2 * qerr / o.BoundTransitionEps)
	return force * blend
}

// EvaluateAll returns the joint-limit generalised force row for every
// actuated joint, indexed the same as qs/vs/qmins/qmaxs (spec.md §4.4 step
// 7 — "u_bnd").
func EvaluateAll(qs, vs, qmins, qmaxs []float64, o Options) []float64 {
	out := make([]float64, len(qs))
	for i := range qs {
		out[i] = Evaluate(qs[i], vs[i], qmins[i], qmaxs[i], o)
	}
	return out
}
