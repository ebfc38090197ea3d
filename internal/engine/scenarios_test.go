package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/contacts"
	"github.com/san-kum/rigidsim/internal/controller"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/engine"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// constantTorque is a minimal AbstractController returning a fixed command
// regardless of state, used to drive scenario S3 into its joint limit.
// controller.Manual zeroes its command on Reset, which Engine.Simulate
// calls at the start of every run — unsuitable for a constant-command
// scenario, so this test defines its own.
type constantTorque struct {
	controller.NopInternal
	u float64
}

func (c constantTorque) ComputeCommand(model rigidbody.Model, t float64, q, v dynamo.State) (dynamo.Control, error) {
	return dynamo.Control{c.u}, nil
}
func (c constantTorque) Reset() {}

func colIndex(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

var _ = Describe("End-to-end scenarios", func() {
	It("S1 free fall", func() {
		model := rigidbody.NewFreeFlyer(1.0, 0.1)
		eng := engine.New()
		opts := eng.Options()
		opts.Contacts = contacts.Options{DryFrictionVelEps: 1, TransitionEps: 1}
		Expect(eng.SetOptions(opts)).To(Succeed())
		Expect(eng.Initialize(model, controller.NewNone(), nil)).To(Succeed())

		x0 := make(dynamo.State, model.Nx())
		Expect(eng.Simulate(x0, 1.0)).To(Succeed())

		header, matrix := eng.GetLogData()
		qzIdx := colIndex(header, "q.2")
		last := matrix[len(matrix)-1]
		Expect(last[qzIdx]).To(BeNumerically("~", -4.905, 1e-3))
	})

	It("S2 resting contact", func() {
		model := rigidbody.NewFreeFlyer(1.0, 0.1)
		eng := engine.New()
		opts := eng.Options()
		opts.Contacts.Stiffness = 1e5
		opts.Contacts.Damping = 50
		Expect(eng.SetOptions(opts)).To(Succeed())
		Expect(eng.Initialize(model, controller.NewNone(), nil)).To(Succeed())

		x0 := make(dynamo.State, model.Nx())
		x0[2] = 0.05
		x0[6] = 1 // identity quaternion w-component
		Expect(eng.Simulate(x0, 2.0)).To(Succeed())

		header, matrix := eng.GetLogData()
		qzIdx := colIndex(header, "q.2")
		vzIdx := colIndex(header, "v.2")
		last := matrix[len(matrix)-1]

		pz := last[qzIdx] - 0.1
		Expect(math.Abs(last[vzIdx])).To(BeNumerically("<", 1e-3))
		Expect(-pz).To(BeNumerically("~", 1.0*9.81/1e5, 0.1*1.0*9.81/1e5))
	})

	It("S3 joint limit", func() {
		model := rigidbody.NewPendulum()
		eng := engine.New()
		opts := eng.Options()
		opts.Joints.BoundStiffness = 1e4
		opts.Joints.BoundDamping = 10
		Expect(eng.SetOptions(opts)).To(Succeed())
		Expect(eng.Initialize(model, constantTorque{u: 200}, nil)).To(Succeed())

		Expect(eng.Simulate(dynamo.State{0, 0}, 2.0)).To(Succeed())

		header, matrix := eng.GetLogData()
		qIdx := colIndex(header, "q.0")
		for _, row := range matrix {
			Expect(row[qIdx]).To(BeNumerically("<=", model.QMax+0.02))
		}
	})

	It("S4 break-point mode lands on every sensor period multiple", func() {
		model := rigidbody.NewPendulum()
		eng := engine.New()
		opts := eng.Options()
		opts.Stepper.SensorsUpdatePeriod = 5e-4
		opts.Stepper.ControllerUpdatePeriod = 1e-3
		opts.Stepper.RandomSeed = 42
		Expect(eng.SetOptions(opts)).To(Succeed())
		Expect(eng.Initialize(model, controller.NewNone(), nil)).To(Succeed())

		Expect(eng.Simulate(dynamo.State{0.1, 0}, 0.1)).To(Succeed())

		_, matrix := eng.GetLogData()
		for k := 0.0; k <= 0.1+1e-9; k += 5e-4 {
			found := false
			for _, row := range matrix {
				if math.Abs(row[0]-k) < 1e-8 {
					found = true
					break
				}
			}
			Expect(found).To(BeTrue(), "expected a sample at t=%v", k)
		}
	})

	It("S5 early stop honors the callback", func() {
		model := rigidbody.NewPendulum()
		eng := engine.New()
		stopped := false
		Expect(eng.Initialize(model, controller.NewNone(), func(t float64, x dynamo.State) bool {
			if t >= 0.3 {
				stopped = true
				return false
			}
			return true
		})).To(Succeed())

		Expect(eng.Simulate(dynamo.State{0.1, 0}, 10.0)).To(Succeed())
		Expect(stopped).To(BeTrue())

		_, matrix := eng.GetLogData()
		last := matrix[len(matrix)-1]
		Expect(last[0]).To(BeNumerically(">=", 0.3))
		Expect(last[0]).To(BeNumerically("<", 0.3+0.1))
	})

	It("S6 conserves energy for a passive double pendulum", func() {
		model := rigidbody.NewDoublePendulum()
		eng := engine.New()
		opts := eng.Options()
		opts.Stepper.TolAbs = 1e-9
		opts.Stepper.TolRel = 1e-9
		Expect(eng.SetOptions(opts)).To(Succeed())
		Expect(eng.Initialize(model, controller.NewNone(), nil)).To(Succeed())

		Expect(eng.Simulate(dynamo.State{1.0, 0.5, 0, 0}, 5.0)).To(Succeed())

		header, matrix := eng.GetLogData()
		eIdx := colIndex(header, "energy")
		e0 := matrix[0][eIdx]
		maxDrift := 0.0
		for _, row := range matrix {
			drift := math.Abs(row[eIdx]-e0) / math.Abs(e0)
			if drift > maxDrift {
				maxDrift = drift
			}
		}
		Expect(maxDrift).To(BeNumerically("<", 1e-4))
	})
})
