package stepper

import "github.com/san-kum/rigidsim/internal/dynamo"

// State is the ODE stepper state (spec.md §4, C1): the current state
// vector x=(q,v) plus the last published snapshot. Field names mirror the
// snapshot spec.md §3 defines, not generic ODE-solver terminology.
type State struct {
	X dynamo.State

	// Last published snapshot (spec.md §3): set once at the start of a
	// run, then updated only after a successful integrator step.
	T    float64
	Q, V dynamo.State
	A    dynamo.State
	U    dynamo.State
	UCmd dynamo.Control
	E    float64
	Iter int

	// DtCur is the step size the driver will try next (spec.md §4.5).
	DtCur float64

	// FailureCount is the number of consecutive rejected trial steps.
	FailureCount int
}

// NewState builds the stepper state for a fresh run at t=0 with initial
// condition x0 (spec.md §4.7 "resets ... stepper state").
func NewState(x0 dynamo.State, nq, nv int) *State {
	q, v := dynamo.Split(x0, nq, nv)
	return &State{
		X:    x0.Clone(),
		T:    0,
		Q:    q.Clone(),
		V:    v.Clone(),
		A:    make(dynamo.State, nv),
		U:    make(dynamo.State, nv),
		UCmd: make(dynamo.Control, 0),
	}
}

// Publish updates the last-published snapshot after a successful step
// (spec.md §5 "ordering guarantees": snapshot update is the final step of
// an outer iteration).
func (s *State) Publish(t float64, x dynamo.State, nq, nv int, a, u dynamo.State, ucmd dynamo.Control, energy float64) {
	q, v := dynamo.Split(x, nq, nv)
	s.T = t
	s.X = x
	s.Q, s.V = q, v
	s.A, s.U = a, u
	s.UCmd = ucmd
	s.E = energy
	s.Iter++
}
