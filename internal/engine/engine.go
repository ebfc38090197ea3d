// Package engine implements the lifecycle state machine (spec.md §4.7, §7,
// C7): FRESH → INITIALIZED → RUNNING → IDLE, wiring together the dynamics
// assembler (C4), the break-point-aware driver (C5), telemetry (C6), and
// the nested options schema (C7). Ported from the teacher's internal/sim
// orchestration layer, generalised from a fixed model roster to any
// rigidbody.Model/controller.AbstractController pair.
package engine

import (
	"io"
	"math/rand"

	"github.com/san-kum/rigidsim/internal/controller"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/options"
	"github.com/san-kum/rigidsim/internal/rigidbody"
	"github.com/san-kum/rigidsim/internal/stepper"
	"github.com/san-kum/rigidsim/internal/telemetry"
)

// State is one of the four lifecycle states spec.md §4.7 names.
type State int

const (
	Fresh State = iota
	Initialized
	Running
	Idle
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "FRESH"
	case Initialized:
		return "INITIALIZED"
	case Running:
		return "RUNNING"
	case Idle:
		return "IDLE"
	default:
		return "UNKNOWN"
	}
}

// minTEnd is the hard minimum simulate duration (spec.md §4.7).
const minTEnd = 0.05

// Engine owns the borrowed Model and AbstractController for the lifetime
// of a run (spec.md §5 "borrowed vs. owned collaborators"); it does not
// outlive them and must not be reused across incompatible models.
type Engine struct {
	state State

	model      rigidbody.Model
	controller controller.AbstractController
	callback   func(t float64, x dynamo.State) bool

	opts options.Options

	assembler *dynamics.Assembler
	driver    *stepper.Driver
	sender    *telemetry.Sender
	stepState *stepper.State

	rng *rand.Rand
}

// New builds an engine with the recognised defaults; call SetOptions or
// Initialize to configure it further.
func New() *Engine {
	return &Engine{state: Fresh, opts: options.Default()}
}

// Options returns the engine's current options snapshot (spec.md §8
// property 8, "getOptions").
func (e *Engine) Options() options.Options {
	return e.opts
}

// SetOptions replaces the engine's options. If the engine is already
// initialised, gravity is re-read into the model immediately (spec.md
// §6.2 "Pushed into the rigid-body model on setOptions after init").
func (e *Engine) SetOptions(opts options.Options) error {
	if err := opts.Validate(); err != nil {
		return badInput(err.Error())
	}
	e.opts = opts
	if e.state != Fresh {
		e.applyGravity()
	}
	return nil
}

func (e *Engine) applyGravity() {
	if setter, ok := e.model.(rigidbody.GravitySetter); ok {
		setter.SetGravity(e.opts.World.Gravity)
	}
}

// Initialize validates model and controller, stores the borrowed
// pointers, resets stepper/telemetry state, and transitions FRESH/IDLE →
// INITIALIZED (spec.md §4.7).
func (e *Engine) Initialize(model rigidbody.Model, ctrl controller.AbstractController, callback func(t float64, x dynamo.State) bool) error {
	if model == nil {
		return initFailed("model is nil")
	}
	if ctrl == nil {
		return initFailed("controller is nil")
	}

	q := make(dynamo.State, model.Nq())
	v := make(dynamo.State, model.Nv())
	cmd, err := ctrl.ComputeCommand(model, 0, q, v)
	if err != nil {
		return generic(err)
	}
	if len(cmd) != model.NMotors() {
		return badInput("controller returned a wrong-sized command vector")
	}
	if _, err := ctrl.InternalDynamics(model, 0, q, v); err != nil {
		return generic(err)
	}

	e.model = model
	e.controller = ctrl
	e.callback = callback

	e.assembler = &dynamics.Assembler{
		Model:            model,
		Controller:       ctrl,
		Contacts:         e.opts.Contacts,
		Joints:           e.opts.Joints,
		SensorPeriod:     e.opts.Stepper.SensorsUpdatePeriod,
		ControllerPeriod: e.opts.Stepper.ControllerUpdatePeriod,
		UCtrl:            make(dynamo.State, model.Nv()),
	}

	e.sender = telemetry.NewSender(e.opts.Telemetry, model.Nq(), model.Nv(), model.NMotors())
	e.driver = stepper.NewDriver(e.assembler, model, e.sender, e.opts.Stepper.TolAbs, e.opts.Stepper.TolRel)

	e.applyGravity()

	e.state = Initialized
	return nil
}

// Simulate requires INITIALIZED, validates x0/t_end, resets random seeds
// and scratch state, re-reads gravity, then drives the run to t_end
// (spec.md §4.7). It leaves the engine in IDLE on both success and fatal
// integration failure — already-recorded telemetry is preserved either
// way (spec.md §7 policy).
func (e *Engine) Simulate(x0 dynamo.State, tEnd float64) error {
	if e.state != Initialized && e.state != Idle {
		return initFailed("engine used before initialize")
	}
	if len(x0) != e.model.Nx() {
		return badInput("x0 length does not match model.Nx()")
	}
	if tEnd < minTEnd {
		return badInput("t_end below the 0.05s hard minimum")
	}

	e.rng = rand.New(rand.NewSource(e.opts.Stepper.RandomSeed))
	e.model.Reset()
	e.controller.Reset()
	e.sender.Reset()
	e.applyGravity()

	e.assembler.Contacts = e.opts.Contacts
	e.assembler.Joints = e.opts.Joints
	e.assembler.SensorPeriod = e.opts.Stepper.SensorsUpdatePeriod
	e.assembler.ControllerPeriod = e.opts.Stepper.ControllerUpdatePeriod
	e.assembler.Last = dynamics.Snapshot{}
	e.assembler.UCtrl = make(dynamo.State, e.model.Nv())
	e.driver.TolAbs = e.opts.Stepper.TolAbs
	e.driver.TolRel = e.opts.Stepper.TolRel

	e.stepState = stepper.NewState(x0, e.model.Nq(), e.model.Nv())

	e.state = Running
	err := e.driver.Run(e.stepState, tEnd, e.callback)
	e.state = Idle
	if err != nil {
		return fatalStep(e.stepState.Iter, e.stepState.T, e.stepState.X, err)
	}
	return nil
}

// Rand exposes the run's seeded RNG so a controller or a scenario-specific
// harness can draw deterministic randomness alongside the run (spec.md
// §6.2 "randomSeed ... seeds all stochastic elements before a run").
func (e *Engine) Rand() *rand.Rand {
	return e.rng
}

// GetLogData reads back the accumulated telemetry (spec.md §6.4).
func (e *Engine) GetLogData() (header []string, matrix [][]float64) {
	return e.sender.Data()
}

// WriteLogBinary writes the current run's telemetry in the binary wire
// format (spec.md §6.3).
func (e *Engine) WriteLogBinary(w io.Writer) error {
	return e.sender.WriteBinary(w)
}

// WriteLogTxt writes the current run's telemetry as the text dump format
// (spec.md §6.3).
func (e *Engine) WriteLogTxt(w io.Writer) error {
	return e.sender.WriteText(w)
}

// State reports the engine's current lifecycle state (spec.md §4.7).
func (e *Engine) State() State {
	return e.state
}

// Reset returns the engine to INITIALIZED, clearing stepper and telemetry
// state without forgetting the borrowed model/controller (spec.md §4.7
// "return to INITIALIZED on reset").
func (e *Engine) Reset() error {
	if e.state == Fresh {
		return initFailed("engine used before initialize")
	}
	e.sender.Reset()
	e.assembler.Last = dynamics.Snapshot{}
	e.stepState = nil
	e.state = Initialized
	return nil
}
