// Package dynamics implements the system dynamics assembler (spec.md
// §4.4, C4): given (t, x) and the engine's last-command scatter vector, it
// fuses kinematics, ground contact (internal/contacts), joint bounds
// (internal/joints), controller command and internal dynamics, and forward
// dynamics into dx/dt. Ported from Engine::systemDynamics in the original
// engine's Engine.cc.
package dynamics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/contacts"
	"github.com/san-kum/rigidsim/internal/controller"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/joints"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// minDt is the floor on Δt used to build the manifold-consistent q̇
// (spec.md §4.4 step 10): it prevents catastrophic cancellation on the
// first evaluation of a step, when t equals t_last_snapshot.
const minDt = 1e-5

// contEps is the "continuous mode" threshold for sensor/controller update
// periods (spec.md §4.4 steps 4-5, §4.5).
const contEps = 1e-12

// SensorRefresher is implemented by models that expose a sensor registry
// refreshed from (t, q, v, aPrev, uPrev). Not every Model needs sensors —
// the closed-form test-double robots in internal/rigidbody do not — so the
// assembler probes for this via a type assertion rather than requiring it
// on rigidbody.Model itself.
type SensorRefresher interface {
	RefreshSensors(t float64, q, v, aPrev, uPrev dynamo.State)
}

// Snapshot mirrors the "last published" record spec.md §3 defines, and is
// the read-only input the assembler consumes for continuous-mode sensor
// refresh and for the Δt used by the manifold-consistent q̇.
type Snapshot struct {
	T    float64
	Q, V dynamo.State
	A    dynamo.State
	U    dynamo.State
	UCmd dynamo.Control
}

// Assembler evaluates dx/dt for one (t, x) pair (spec.md §4.4). It is not
// reentrant: only one Evaluate call may be in flight at a time, matching
// the borrowed Model's single scratch buffer.
type Assembler struct {
	Model      rigidbody.Model
	Controller controller.AbstractController

	Contacts contacts.Options
	Joints   joints.Options

	// SensorPeriod and ControllerPeriod are the stepper.* update periods
	// (spec.md §4.4 steps 4-5); <= contEps means continuous mode.
	SensorPeriod     float64
	ControllerPeriod float64

	// UCtrl is the stored last-command scatter vector (length nv),
	// refreshed by the driver at controller break-points and read here
	// every evaluation (spec.md §4.4 preamble).
	UCtrl dynamo.State

	// Last is the most recent published snapshot, used for continuous
	// sensor refresh and the Δt floor.
	Last Snapshot
}

// Result is everything one evaluation of the assembler produces: the
// derivative plus the intermediate quantities the driver and telemetry
// need without re-deriving them (spec.md §4.5 step 5, §4.6). UCmd is the
// currently active post-saturation command — freshly computed on this call
// in continuous controller mode, or the value held since the last
// controller break-point otherwise — so callers never need to reach past
// this struct into Assembler.Last to learn what was actually commanded.
type Result struct {
	Dxdt dynamo.State
	A    dynamo.State
	U    dynamo.State
	UCmd dynamo.Control
}

// Evaluate implements spec.md §4.4 steps 1-11.
func (a *Assembler) Evaluate(t float64, x dynamo.State) (Result, error) {
	nq, nv := a.Model.Nq(), a.Model.Nv()
	q, v := dynamo.Split(x, nq, nv)

	if err := a.Model.ForwardKinematics(q, v); err != nil {
		return Result{}, err
	}

	fext := make([]rigidbody.Wrench, nv)
	for i, frameIdx := range a.Model.ContactFrameIdx() {
		frame := a.Model.FramePlacement(frameIdx)
		jointFrame := a.Model.FrameJointPlacement(frameIdx)
		wrench := contacts.Evaluate(frame, jointFrame, a.Contacts)

		parentRow := a.Model.ParentJointVelocityIdx(frameIdx)
		fext[parentRow] = fext[parentRow].Add(wrench)
		a.Model.SetContactForce(i, wrench)
	}

	if a.SensorPeriod <= contEps {
		if refresher, ok := a.Model.(SensorRefresher); ok {
			refresher.RefreshSensors(t, q, v, a.Last.A, a.Last.U)
		}
	}

	ucmd := a.Last.UCmd
	if a.ControllerPeriod <= contEps {
		cmd, err := a.Controller.ComputeCommand(a.Model, t, q, v)
		if err != nil {
			return Result{}, err
		}
		limits := a.Model.EffortLimits()
		if len(limits) > 0 {
			cmd = controller.Saturate(cmd, limits)
		}
		a.Last.UCmd = cmd
		a.UCtrl = controller.Scatter(cmd, a.Model.ActuatedVelocityIdx(), nv)
		ucmd = cmd
	}

	uInt, err := a.Controller.InternalDynamics(a.Model, t, q, v)
	if err != nil {
		return Result{}, err
	}

	uBnd := a.boundsForce(q, v, nv)

	u := make(dynamo.State, nv)
	for i := 0; i < nv; i++ {
		u[i] = uBnd[i] + uInt[i] + a.UCtrl[i]
	}

	accel, err := a.Model.ABA(q, v, u, fext)
	if err != nil {
		return Result{}, err
	}

	dt := math.Max(minDt, t-a.Last.T)
	vScaled := v.Scale(dt)
	qNext, err := a.Model.Integrate(q, vScaled)
	if err != nil {
		return Result{}, err
	}
	qdot := qNext.Sub(q).Scale(1 / dt)

	return Result{
		Dxdt: dynamo.Join(qdot, accel),
		A:    accel,
		U:    u,
		UCmd: ucmd,
	}, nil
}

// boundsForce evaluates spec.md §4.2 for every actuated joint and scatters
// the result into a length-nv generalised-force vector (spec.md §4.4 step
// 7, "u_bnd").
func (a *Assembler) boundsForce(q, v dynamo.State, nv int) dynamo.State {
	out := make(dynamo.State, nv)
	posIdx := a.Model.ActuatedPositionIdx()
	velIdx := a.Model.ActuatedVelocityIdx()
	qmin := a.Model.JointBoundsMin()
	qmax := a.Model.JointBoundsMax()
	for i := range posIdx {
		row := velIdx[i]
		out[row] = joints.Evaluate(q[posIdx[i]], v[row], qmin[i], qmax[i], a.Joints)
	}
	return out
}
