package stepper

import (
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Dormand-Prince coefficients, ported unchanged from the teacher's
// internal/integrators/rk45.go.
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is an embedded-error Dormand-Prince stepper (order 5, order-4 error
// estimate) with a step-size controller (spec.md §4.5). Unlike the
// teacher's version, step acceptance is decided by a mixed absolute/
// relative error norm against two independent tolerances rather than a
// single combined one. The next step size depends on the current step's
// error ratio only; the controller keeps no previous-error (PI) term.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{safety: 0.9, minScale: 0.2, maxScale: 10.0}
}

// StepResult is the outcome of one trial step.
type StepResult struct {
	X        dynamo.State // the trial next state (only meaningful if Accepted)
	Dxdt     dynamo.State // dx/dt evaluated at (t, x), the first Runge-Kutta stage
	NextDt   float64      // the step size to try next
	Accepted bool
	ErrRatio float64
}

// Step attempts to advance (t, x) by dt, using f to evaluate dx/dt at each
// Runge-Kutta stage. It returns the trial state, whether the mixed-norm
// error check accepted it, and the next step size the step-size controller
// recommends (spec.md §4.5 "attempts a step ... on accept ... on reject").
func (r *RK45) Step(f EvalFunc, x dynamo.State, t, dt, tolAbs, tolRel float64) (StepResult, error) {
	n := len(x)

	k1, err := f(t, x)
	if err != nil {
		return StepResult{}, err
	}

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2, err := f(t+a2*dt, x2)
	if err != nil {
		return StepResult{}, err
	}

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3, err := f(t+a3*dt, x3)
	if err != nil {
		return StepResult{}, err
	}

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4, err := f(t+a4*dt, x4)
	if err != nil {
		return StepResult{}, err
	}

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5, err := f(t+a5*dt, x5)
	if err != nil {
		return StepResult{}, err
	}

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6, err := f(t+dt, x6)
	if err != nil {
		return StepResult{}, err
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7, err := f(t+dt, xNew)
	if err != nil {
		return StepResult{}, err
	}

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := tolAbs + tolRel*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	accepted := errMax <= 1.0

	var nextDt float64
	switch {
	case errMax <= 0:
		nextDt = dt * r.maxScale
	case !accepted:
		nextDt = dt * math.Max(r.minScale, r.safety*math.Pow(errMax, -0.25))
	default:
		nextDt = dt * math.Min(r.maxScale, r.safety*math.Pow(errMax, -0.2))
	}

	return StepResult{X: xNew, Dxdt: k1, NextDt: nextDt, Accepted: accepted, ErrRatio: errMax}, nil
}
