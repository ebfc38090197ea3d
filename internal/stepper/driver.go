package stepper

import (
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/controller"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// MaxIters bounds the outer loop iteration count (spec.md §4.5 terminate
// condition 3).
const MaxIters = 100000

// MaxConsecutiveFailures is the failure-step limiter threshold (spec.md
// §4.5 "exceeding a library-defined threshold (≈500)").
const MaxConsecutiveFailures = 500

// epsMachine bounds the t_end proximity check (spec.md §4.5 terminate
// condition 1).
const epsMachine = 1e-9

// breakPointEps is the tolerance used to decide whether t coincides with a
// sensor/controller period multiple (spec.md §4.5 step 3b/3c).
const breakPointEps = 1e-8

// ErrTooManyFailures is returned when the failure-step limiter trips. It
// wraps dynamo.ErrStepTooSmall: a run that keeps getting rejected is a run
// whose step size can no longer make progress, the same failure kind that
// sentinel names.
var ErrTooManyFailures = fmt.Errorf("stepper: %w: too many consecutive rejected steps", dynamo.ErrStepTooSmall)

// Recorder receives one telemetry sample per outer-loop iteration (spec.md
// §4.6). Defined here so stepper does not import internal/telemetry;
// internal/telemetry's Sender implements it.
type Recorder interface {
	Sample(t float64, q, v, a, u dynamo.State, ucmd dynamo.Control, energy float64)
}

// Driver is the break-point-aware adaptive integration driver (spec.md
// §4.5, C5). It owns an RK45 stepper and drives an Assembler through one
// full run.
type Driver struct {
	Assembler *dynamics.Assembler
	Model     rigidbody.Model
	Recorder  Recorder

	TolAbs float64
	TolRel float64

	rk45 *RK45
}

// NewDriver builds a driver around an already-configured assembler.
func NewDriver(a *dynamics.Assembler, model rigidbody.Model, rec Recorder, tolAbs, tolRel float64) *Driver {
	return &Driver{Assembler: a, Model: model, Recorder: rec, TolAbs: tolAbs, TolRel: tolRel, rk45: NewRK45()}
}

// outerPeriod computes Δ per spec.md §4.5.
func outerPeriod(sensorPeriod, controllerPeriod float64) float64 {
	sOn := sensorPeriod > breakPointEps
	cOn := controllerPeriod > breakPointEps
	switch {
	case !sOn && cOn:
		return controllerPeriod
	case sOn && !cOn:
		return sensorPeriod
	case sOn && cOn:
		return math.Min(sensorPeriod, controllerPeriod)
	default:
		return 0
	}
}

// coincides reports whether t is within breakPointEps of a multiple of
// period (spec.md §4.5 step 3b/3c). A non-positive period never coincides.
func coincides(t, period float64) bool {
	if period <= breakPointEps {
		return false
	}
	nearest := math.Round(t/period) * period
	return math.Abs(t-nearest) < breakPointEps
}

// Run advances the stepper state from x0 to t_end, sampling telemetry at
// every outer-loop iteration and honoring the optional user callback
// (spec.md §4.5, §4.7 "simulate"). callback may be nil.
func (d *Driver) Run(state *State, tEnd float64, callback func(t float64, x dynamo.State) bool) error {
	nq, nv := d.Model.Nq(), d.Model.Nv()

	dt0 := 5e-4
	delta := outerPeriod(d.Assembler.SensorPeriod, d.Assembler.ControllerPeriod)
	if delta > 0 {
		dt0 = delta
	}
	state.DtCur = dt0

	initialRes, err := d.Assembler.Evaluate(state.T, state.X)
	if err != nil {
		return err
	}
	d.publishStep(state, state.T, state.X, initialRes, nq, nv)

	for {
		if d.Recorder != nil {
			d.Recorder.Sample(state.T, state.Q, state.V, state.A, state.U, state.UCmd, state.E)
		}

		if math.Abs(tEnd-state.T) < epsMachine {
			return nil
		}
		if callback != nil && !callback(state.T, state.X) {
			return nil
		}
		if state.Iter >= MaxIters {
			return nil
		}

		if delta > 0 {
			if err := d.breakPointIteration(state, tEnd, delta, nq, nv); err != nil {
				return err
			}
		} else {
			if err := d.freeAdaptiveIteration(state, tEnd, nq, nv); err != nil {
				return err
			}
		}
	}
}

// breakPointIteration implements spec.md §4.5 step 3.
func (d *Driver) breakPointIteration(state *State, tEnd, delta float64, nq, nv int) error {
	tNext := state.T + math.Min(delta, tEnd-state.T)

	if coincides(state.T, d.Assembler.SensorPeriod) {
		if refresher, ok := d.Model.(dynamics.SensorRefresher); ok {
			refresher.RefreshSensors(state.T, state.Q, state.V, state.A, state.U)
		}
	}
	if coincides(state.T, d.Assembler.ControllerPeriod) {
		cmd, err := d.Assembler.Controller.ComputeCommand(d.Model, state.T, state.Q, state.V)
		if err != nil {
			return err
		}
		limits := d.Model.EffortLimits()
		if len(limits) > 0 {
			cmd = controller.Saturate(cmd, limits)
		}
		state.UCmd = cmd
		d.Assembler.Last.UCmd = cmd
		d.Assembler.UCtrl = controller.Scatter(cmd, d.Model.ActuatedVelocityIdx(), nv)
	}

	for state.T < tNext {
		step := math.Min(state.DtCur, tNext-state.T)
		res, err := d.rk45.Step(d.assemblerEval, state.X, state.T, step, d.TolAbs, d.TolRel)
		if err != nil {
			return err
		}
		if res.Accepted {
			state.FailureCount = 0
			state.T += step
			state.X = res.X
			state.DtCur = math.Max(state.DtCur, step)
			if err := d.finishStep(state, nq, nv); err != nil {
				return err
			}
		} else {
			state.DtCur = res.NextDt
			state.FailureCount++
			if state.FailureCount > MaxConsecutiveFailures {
				return ErrTooManyFailures
			}
		}
	}
	return nil
}

// freeAdaptiveIteration implements spec.md §4.5 step 4.
func (d *Driver) freeAdaptiveIteration(state *State, tEnd float64, nq, nv int) error {
	for {
		step := math.Min(state.DtCur, tEnd-state.T)
		res, err := d.rk45.Step(d.assemblerEval, state.X, state.T, step, d.TolAbs, d.TolRel)
		if err != nil {
			return err
		}
		if res.Accepted {
			state.FailureCount = 0
			state.T += step
			state.X = res.X
			state.DtCur = res.NextDt
			return d.finishStep(state, nq, nv)
		}
		state.DtCur = res.NextDt
		state.FailureCount++
		if state.FailureCount > MaxConsecutiveFailures {
			return ErrTooManyFailures
		}
	}
}

// assemblerEval adapts Assembler.Evaluate to the EvalFunc signature the
// RK45 stepper's inner stages call.
func (d *Driver) assemblerEval(t float64, x dynamo.State) (dynamo.State, error) {
	res, err := d.Assembler.Evaluate(t, x)
	if err != nil {
		return nil, err
	}
	return res.Dxdt, nil
}

// finishStep implements spec.md §4.5 step 5: recompute a from dx/dt,
// recompute u = RNEA(q, v, a) for reverse-dynamics consistency, compute
// energy, and publish the snapshot.
func (d *Driver) finishStep(state *State, nq, nv int) error {
	res, err := d.Assembler.Evaluate(state.T, state.X)
	if err != nil {
		return err
	}
	q, v := dynamo.Split(state.X, nq, nv)
	u, err := d.Model.RNEA(q, v, res.A)
	if err != nil {
		return err
	}
	energy := d.Model.Energy(q, v)
	d.Assembler.Last = dynamics.Snapshot{T: state.T, Q: q, V: v, A: res.A, U: u, UCmd: res.UCmd}
	state.Publish(state.T, state.X, nq, nv, res.A, u, res.UCmd, energy)
	return nil
}

// publishStep records the initial snapshot before the outer loop starts.
func (d *Driver) publishStep(state *State, t float64, x dynamo.State, res dynamics.Result, nq, nv int) {
	q, v := dynamo.Split(x, nq, nv)
	energy := d.Model.Energy(q, v)
	d.Assembler.Last = dynamics.Snapshot{T: t, Q: q, V: v, A: res.A, U: res.U, UCmd: res.UCmd}
	state.Publish(t, x, nq, nv, res.A, res.U, res.UCmd, energy)
}
