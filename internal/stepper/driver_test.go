package stepper

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/contacts"
	"github.com/san-kum/rigidsim/internal/controller"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/joints"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

func TestErrTooManyFailures_WrapsStepTooSmall(t *testing.T) {
	if !errors.Is(ErrTooManyFailures, dynamo.ErrStepTooSmall) {
		t.Errorf("expected ErrTooManyFailures to wrap dynamo.ErrStepTooSmall")
	}
}

type recordingRecorder struct {
	samples []float64
	ucmds   []dynamo.Control
}

func (r *recordingRecorder) Sample(t float64, q, v, a, u dynamo.State, ucmd dynamo.Control, energy float64) {
	r.samples = append(r.samples, t)
	r.ucmds = append(r.ucmds, ucmd)
}

func newPendulumDriver(sensorPeriod, controllerPeriod float64, rec Recorder) *Driver {
	model := rigidbody.NewPendulum()
	a := &dynamics.Assembler{
		Model:            model,
		Controller:       controller.NewNone(),
		Contacts:         contacts.DefaultOptions(),
		Joints:           joints.DefaultOptions(),
		SensorPeriod:     sensorPeriod,
		ControllerPeriod: controllerPeriod,
		UCtrl:            make(dynamo.State, model.Nv()),
	}
	return NewDriver(a, model, rec, 1e-6, 1e-6)
}

func TestOuterPeriod_PureAdaptiveWhenBothZero(t *testing.T) {
	if got := outerPeriod(0, 0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestOuterPeriod_TakesMinWhenBothSet(t *testing.T) {
	if got := outerPeriod(0.01, 0.02); got != 0.01 {
		t.Errorf("expected 0.01, got %v", got)
	}
}

func TestOuterPeriod_TakesWhicheverIsSet(t *testing.T) {
	if got := outerPeriod(0, 0.02); got != 0.02 {
		t.Errorf("expected 0.02, got %v", got)
	}
	if got := outerPeriod(0.02, 0); got != 0.02 {
		t.Errorf("expected 0.02, got %v", got)
	}
}

func TestDriver_FreeAdaptiveRunReachesTEnd(t *testing.T) {
	rec := &recordingRecorder{}
	d := newPendulumDriver(0, 0, rec)
	model := rigidbody.NewPendulum()
	state := NewState(dynamo.State{0.1, 0}, model.Nq(), model.Nv())

	if err := d.Run(state, 1.0, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(state.T-1.0) > 1e-6 {
		t.Errorf("expected t_end=1.0, got %v", state.T)
	}
	if len(rec.samples) < 2 {
		t.Errorf("expected multiple telemetry samples, got %d", len(rec.samples))
	}
}

func TestDriver_BreakPointRunLandsExactlyOnPeriodMultiples(t *testing.T) {
	rec := &recordingRecorder{}
	d := newPendulumDriver(0.1, 0, rec)
	model := rigidbody.NewPendulum()
	state := NewState(dynamo.State{0.1, 0}, model.Nq(), model.Nv())

	if err := d.Run(state, 0.5, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(state.T-0.5) > 1e-6 {
		t.Errorf("expected t_end=0.5, got %v", state.T)
	}
	foundBreakPoint := false
	for _, s := range rec.samples {
		if math.Abs(s-0.3) < 1e-6 {
			foundBreakPoint = true
		}
	}
	if !foundBreakPoint {
		t.Errorf("expected a telemetry sample landing exactly on a 0.1s break-point, samples=%v", rec.samples)
	}
}

func TestDriver_CallbackStopsRunEarly(t *testing.T) {
	rec := &recordingRecorder{}
	d := newPendulumDriver(0, 0, rec)
	model := rigidbody.NewPendulum()
	state := NewState(dynamo.State{0.1, 0}, model.Nq(), model.Nv())

	calls := 0
	err := d.Run(state, 10.0, func(t float64, x dynamo.State) bool {
		calls++
		return calls < 3
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.T >= 10.0 {
		t.Errorf("expected the run to stop before t_end, got t=%v", state.T)
	}
}

func TestDriver_BreakPointRejectedStepShrinksDtCur(t *testing.T) {
	// Starting well beyond the pendulum's joint bound (qmax=0.5) makes the
	// first full-period trial step stiff enough to be rejected under the
	// default tolerances. If a rejected break-point step failed to shrink
	// state.DtCur, every retry would recompute the identical step size,
	// get rejected again, and the run would abort with ErrTooManyFailures
	// well before reaching the break-point.
	rec := &recordingRecorder{}
	model := rigidbody.NewPendulum()
	a := &dynamics.Assembler{
		Model:        model,
		Controller:   controller.NewNone(),
		Contacts:     contacts.DefaultOptions(),
		Joints:       joints.DefaultOptions(),
		SensorPeriod: 0.05,
		UCtrl:        make(dynamo.State, model.Nv()),
	}
	d := NewDriver(a, model, rec, 1e-8, 1e-6)
	state := NewState(dynamo.State{1.5, 0}, model.Nq(), model.Nv())

	if err := d.Run(state, 0.05, nil); err != nil {
		t.Fatalf("expected the driver to shrink its way to the break-point, got error: %v", err)
	}
	if math.Abs(state.T-0.05) > 1e-6 {
		t.Errorf("expected t=0.05 despite a rejected first step, got %v", state.T)
	}
}

func TestDriver_ContinuousModeLogsThePostSaturationCommand(t *testing.T) {
	// In continuous controller mode (the default: ControllerPeriod == 0),
	// state.UCmd must reflect the command the assembler actually computed
	// and saturated on the last evaluation, not the zero-length value
	// state.UCmd starts life at.
	rec := &recordingRecorder{}
	model := rigidbody.NewPendulum()
	ctrl := controller.NewPID(1e6, 0, 0, 10.0)
	a := &dynamics.Assembler{
		Model:      model,
		Controller: ctrl,
		Contacts:   contacts.DefaultOptions(),
		Joints:     joints.DefaultOptions(),
		UCtrl:      make(dynamo.State, model.Nv()),
	}
	d := NewDriver(a, model, rec, 1e-6, 1e-6)
	state := NewState(dynamo.State{0, 0}, model.Nq(), model.Nv())

	if err := d.Run(state, 0.01, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(state.UCmd) != 1 || math.Abs(state.UCmd[0]-model.Effort) > 1e-9 {
		t.Errorf("expected the published state to carry the saturated command %v, got %v", model.Effort, state.UCmd)
	}

	foundNonZero := false
	for _, u := range rec.ucmds {
		if len(u) == 1 && math.Abs(u[0]) > 1e-9 {
			foundNonZero = true
		}
	}
	if !foundNonZero {
		t.Errorf("expected at least one telemetry sample with a nonzero u_cmd, got %v", rec.ucmds)
	}
}

func TestDriver_BreakPointModeLogsThePostSaturationCommand(t *testing.T) {
	// Break-point mode only refreshes Assembler.Last.UCmd at a controller
	// break-point; if that assignment were missing, finishStep's Evaluate
	// call would read back the stale zero-value command and the u_cmd
	// telemetry column would be all-zeros despite a nonzero applied torque.
	rec := &recordingRecorder{}
	model := rigidbody.NewPendulum()
	ctrl := controller.NewPID(1e6, 0, 0, 10.0)
	a := &dynamics.Assembler{
		Model:            model,
		Controller:       ctrl,
		Contacts:         contacts.DefaultOptions(),
		Joints:           joints.DefaultOptions(),
		ControllerPeriod: 0.01,
		UCtrl:            make(dynamo.State, model.Nv()),
	}
	d := NewDriver(a, model, rec, 1e-6, 1e-6)
	state := NewState(dynamo.State{0, 0}, model.Nq(), model.Nv())

	if err := d.Run(state, 0.05, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(state.UCmd) != 1 || math.Abs(state.UCmd[0]-model.Effort) > 1e-9 {
		t.Errorf("expected the published state to carry the saturated command %v, got %v", model.Effort, state.UCmd)
	}

	foundNonZero := false
	for _, u := range rec.ucmds {
		if len(u) == 1 && math.Abs(u[0]) > 1e-9 {
			foundNonZero = true
		}
	}
	if !foundNonZero {
		t.Errorf("expected at least one telemetry sample with a nonzero u_cmd, got %v", rec.ucmds)
	}
}

func TestDriver_MonotonicTelemetrySamples(t *testing.T) {
	rec := &recordingRecorder{}
	d := newPendulumDriver(0, 0, rec)
	model := rigidbody.NewPendulum()
	state := NewState(dynamo.State{0.2, 0}, model.Nq(), model.Nv())

	if err := d.Run(state, 0.2, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(rec.samples); i++ {
		if rec.samples[i] <= rec.samples[i-1] {
			t.Errorf("telemetry samples must be strictly monotonic, got %v", rec.samples)
			break
		}
	}
}
