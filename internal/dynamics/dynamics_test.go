package dynamics

import (
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/contacts"
	"github.com/san-kum/rigidsim/internal/controller"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/joints"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

func newPendulumAssembler(ctrl controller.AbstractController) *Assembler {
	model := rigidbody.NewPendulum()
	return &Assembler{
		Model:      model,
		Controller: ctrl,
		Contacts:   contacts.DefaultOptions(),
		Joints:     joints.DefaultOptions(),
		UCtrl:      make(dynamo.State, model.Nv()),
	}
}

func TestEvaluate_ZeroTorqueAtRestNoAcceleration(t *testing.T) {
	a := newPendulumAssembler(controller.NewNone())
	res, err := a.Evaluate(0.0, dynamo.State{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.A[0]) > 1e-9 {
		t.Errorf("expected zero acceleration at theta=0 with zero torque, got %v", res.A[0])
	}
}

func TestEvaluate_GravityAccelerates(t *testing.T) {
	a := newPendulumAssembler(controller.NewNone())
	res, err := a.Evaluate(0.0, dynamo.State{0.3, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.A[0] >= 0 {
		t.Errorf("expected negative (restoring) acceleration for positive angle, got %v", res.A[0])
	}
}

func TestEvaluate_ManifoldQdotMatchesVelocityForScalarJoint(t *testing.T) {
	a := newPendulumAssembler(controller.NewNone())
	a.Last = Snapshot{T: 0.0}
	res, err := a.Evaluate(0.1, dynamo.State{0.2, 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Dxdt[0]-1.5) > 1e-6 {
		t.Errorf("expected qdot == v for a scalar joint, got %v", res.Dxdt[0])
	}
}

func TestEvaluate_ContinuousControllerAppliesSaturation(t *testing.T) {
	// A PID with a huge gain should still be clamped to the model's effort
	// limit once it feeds into u.
	model := rigidbody.NewPendulum()
	ctrl := controller.NewPID(1e6, 0, 0, 10.0)
	a := &Assembler{
		Model:      model,
		Controller: ctrl,
		Contacts:   contacts.DefaultOptions(),
		Joints:     joints.DefaultOptions(),
		UCtrl:      make(dynamo.State, model.Nv()),
	}
	_, err := a.Evaluate(0.0, dynamo.State{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(a.Last.UCmd[0]) > model.Effort+1e-9 {
		t.Errorf("expected saturated command within effort limit %v, got %v", model.Effort, a.Last.UCmd[0])
	}
}

func TestEvaluate_ResultCarriesTheCommandComputedThisCall(t *testing.T) {
	// Result.UCmd must reflect the freshly computed, saturated command in
	// continuous controller mode, so a caller never has to reach into
	// Assembler.Last (which the driver overwrites wholesale every step) to
	// learn what was actually commanded.
	model := rigidbody.NewPendulum()
	ctrl := controller.NewPID(1e6, 0, 0, 10.0)
	a := &Assembler{
		Model:      model,
		Controller: ctrl,
		Contacts:   contacts.DefaultOptions(),
		Joints:     joints.DefaultOptions(),
		UCtrl:      make(dynamo.State, model.Nv()),
	}
	res, err := a.Evaluate(0.0, dynamo.State{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.UCmd) != 1 || math.Abs(res.UCmd[0]-model.Effort) > 1e-9 {
		t.Errorf("expected Result.UCmd saturated to the effort limit %v, got %v", model.Effort, res.UCmd)
	}
}

func TestEvaluate_JointLimitAddsRestoringForce(t *testing.T) {
	model := rigidbody.NewPendulum()
	a := &Assembler{
		Model:      model,
		Controller: controller.NewNone(),
		Contacts:   contacts.DefaultOptions(),
		Joints:     joints.DefaultOptions(),
		UCtrl:      make(dynamo.State, model.Nv()),
	}
	// well beyond qmax = 0.5
	res, err := a.Evaluate(0.0, dynamo.State{1.5, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.U[0] >= 0 {
		t.Errorf("expected a restoring (negative) generalised force beyond qmax, got %v", res.U[0])
	}
}

func TestEvaluate_ContactWrenchAccumulatesOnFreeFlyer(t *testing.T) {
	model := rigidbody.NewFreeFlyer(1.0, 0.1)
	a := &Assembler{
		Model:      model,
		Controller: controller.NewNone(),
		Contacts:   contacts.DefaultOptions(),
		Joints:     joints.DefaultOptions(),
		UCtrl:      make(dynamo.State, model.Nv()),
	}
	// place the sphere so its contact point (center - radius along z)
	// penetrates the ground.
	q := dynamo.State{0, 0, 0.05, 0, 0, 0, 1}
	v := dynamo.State{0, 0, 0, 0, 0, 0}
	res, err := a.Evaluate(0.0, dynamo.Join(q, v))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.A[2] <= 0 {
		t.Errorf("expected upward acceleration from ground contact, got %v", res.A[2])
	}
	forces := model.ContactForces()
	if len(forces) != 1 || forces[0][2] <= 0 {
		t.Errorf("expected the contact-force export buffer to record an upward normal force, got %v", forces)
	}
}
