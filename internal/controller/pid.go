package controller

import (
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// PID drives the first actuated joint's position to Target, ported from
// the teacher's control.PID / controllers.PID (merged, since the two were
// byte-for-byte duplicates apart from their Compute signature).
type PID struct {
	NopInternal

	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{Kp: kp, Ki: ki, Kd: kd, Target: target, first: true}
}

func (p *PID) ComputeCommand(model rigidbody.Model, t float64, q, v dynamo.State) (dynamo.Control, error) {
	n := model.NMotors()
	u := make(dynamo.Control, n)
	if n == 0 || len(q) == 0 {
		return u, nil
	}

	err := p.Target - q[0]

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		u[0] = p.Kp * err
		return u, nil
	}

	dt := t - p.prevT
	if dt <= 0 {
		u[0] = p.Kp * err
		return u, nil
	}

	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	u[0] = p.Kp*err + p.Ki*p.integral + p.Kd*derivative

	p.prevErr = err
	p.prevT = t
	return u, nil
}

// Reset clears integral and derivative state, called at the start of
// every run (spec.md §6.1).
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.first = true
}

// GetParams returns tunable parameters for live adjustment.
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{"Kp": p.Kp, "Ki": p.Ki, "Kd": p.Kd, "Target": p.Target}
}

// SetParam adjusts a PID parameter by name.
func (p *PID) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		p.Kp = value
	case "Ki":
		p.Ki = value
	case "Kd":
		p.Kd = value
	case "Target":
		p.Target = value
	}
}

var _ AbstractController = (*PID)(nil)
