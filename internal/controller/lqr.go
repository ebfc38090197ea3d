package controller

import (
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// LQR is a linear state-feedback controller u = -K(x - target), ported
// from the teacher's control.LQR. x here is the full generalised state
// (q,v) concatenated, matching the gain matrices' original state layout.
type LQR struct {
	NopInternal

	K      [][]float64
	Target dynamo.State
}

func NewLQR(k [][]float64, target dynamo.State) *LQR {
	return &LQR{K: k, Target: target}
}

func (l *LQR) ComputeCommand(model rigidbody.Model, t float64, q, v dynamo.State) (dynamo.Control, error) {
	x := dynamo.Join(q, v)
	u := make(dynamo.Control, len(l.K))
	for i := range u {
		for j := range x {
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			if j < len(l.K[i]) {
				u[i] -= l.K[i][j] * (x[j] - target)
			}
		}
	}
	return u, nil
}

func (l *LQR) Reset() {}

var _ AbstractController = (*LQR)(nil)

// Stock gain matrices for the pendulum test double, ported from the
// teacher's control.NewPendulumLQR / control.NewDoublePendulumLQR.
var (
	pendulumGains       = [][]float64{{31.62, 10.0}}
	doublePendulumGains = [][]float64{{50.0, 40.0, 15.0, 10.0}}
)

// NewPendulumLQR returns an LQR with the stock pendulum gains, regulating
// toward q=0, v=0 — rigidbody.Pendulum's hanging rest position.
func NewPendulumLQR() *LQR {
	return NewLQR(pendulumGains, dynamo.State{0, 0})
}

// NewDoublePendulumLQR returns an LQR with the stock double-pendulum gains,
// regulating toward the all-zero (hanging) state. Its gain matrix has one
// row, so it produces a one-entry command; rigidbody.DoublePendulum has no
// actuated joints, and Engine.Initialize rejects that pairing as a
// wrong-sized command.
func NewDoublePendulumLQR() *LQR {
	return NewLQR(doublePendulumGains, dynamo.State{0, 0, 0, 0})
}
