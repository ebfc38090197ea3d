package stepper

import "github.com/san-kum/rigidsim/internal/dynamo"

// Euler, RK4, and Verlet are fixed-step integrators kept for benchmarking
// and cross-checking the embedded RK45 driver (spec.md's core mandates a
// single adaptive integrator; these are not wired into Driver). Ported
// from the teacher's internal/integrators/{euler,rk4,verlet}.go.

type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Step(f EvalFunc, x dynamo.State, t, dt float64) (dynamo.State, error) {
	dx, err := f(t, x)
	if err != nil {
		return nil, err
	}
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result, nil
}

type RK4 struct{}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) Step(f EvalFunc, x dynamo.State, t, dt float64) (dynamo.State, error) {
	n := len(x)

	k1, err := f(t, x)
	if err != nil {
		return nil, err
	}

	scratch := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2, err := f(t+dt*0.5, scratch)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3, err := f(t+dt*0.5, scratch)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*k3[i]
	}
	k4, err := f(t+dt, scratch)
	if err != nil {
		return nil, err
	}

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result, nil
}

// Verlet is velocity Verlet for a state laid out as (positions, velocities)
// of equal length, as the teacher's version assumes. It is only meaningful
// for models without a free-flyer quaternion block.
type Verlet struct{}

func NewVerlet() *Verlet { return &Verlet{} }

func (v *Verlet) Step(f EvalFunc, x dynamo.State, t, dt float64) (dynamo.State, error) {
	n := len(x)
	half := n / 2

	dx, err := f(t, x)
	if err != nil {
		return nil, err
	}
	dt2 := dt * dt

	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*dx[half+i]*dt2
	}

	scratch := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		scratch[i] = result[i]
		scratch[half+i] = x[half+i]
	}

	dxNew, err := f(t+dt, scratch)
	if err != nil {
		return nil, err
	}

	halfDt := 0.5 * dt
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + (dx[half+i]+dxNew[half+i])*halfDt
	}
	return result, nil
}
