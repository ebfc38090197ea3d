package engine_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/controller"
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/engine"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

var _ = Describe("Engine lifecycle", func() {
	var eng *engine.Engine

	BeforeEach(func() {
		eng = engine.New()
	})

	It("starts FRESH", func() {
		Expect(eng.State()).To(Equal(engine.Fresh))
	})

	It("rejects Simulate before Initialize", func() {
		err := eng.Simulate(dynamo.State{0, 0}, 1.0)
		Expect(err).To(MatchError(engine.ErrInitFailed))
	})

	It("rejects Initialize with a nil model", func() {
		err := eng.Initialize(nil, controller.NewNone(), nil)
		Expect(err).To(MatchError(engine.ErrInitFailed))
	})

	It("transitions to INITIALIZED on a valid Initialize", func() {
		model := rigidbody.NewPendulum()
		Expect(eng.Initialize(model, controller.NewNone(), nil)).To(Succeed())
		Expect(eng.State()).To(Equal(engine.Initialized))
	})

	When("initialised with a pendulum", func() {
		var model *rigidbody.Pendulum

		BeforeEach(func() {
			model = rigidbody.NewPendulum()
			Expect(eng.Initialize(model, controller.NewNone(), nil)).To(Succeed())
		})

		It("rejects a wrong-sized x0", func() {
			err := eng.Simulate(dynamo.State{0}, 1.0)
			Expect(err).To(MatchError(engine.ErrBadInput))
		})

		It("rejects t_end below the hard minimum", func() {
			err := eng.Simulate(dynamo.State{0, 0}, 0.01)
			Expect(err).To(MatchError(engine.ErrBadInput))
		})

		It("returns to IDLE after a successful run", func() {
			Expect(eng.Simulate(dynamo.State{0.1, 0}, 0.2)).To(Succeed())
			Expect(eng.State()).To(Equal(engine.Idle))
		})

		It("allows re-running from IDLE", func() {
			Expect(eng.Simulate(dynamo.State{0.1, 0}, 0.2)).To(Succeed())
			Expect(eng.Simulate(dynamo.State{0.2, 0}, 0.2)).To(Succeed())
		})

		It("returns to INITIALIZED on Reset and clears telemetry", func() {
			Expect(eng.Simulate(dynamo.State{0.1, 0}, 0.2)).To(Succeed())
			Expect(eng.Reset()).To(Succeed())
			Expect(eng.State()).To(Equal(engine.Initialized))
			_, matrix := eng.GetLogData()
			Expect(matrix).To(BeEmpty())
		})

		It("re-reads gravity into the model on SetOptions after init", func() {
			opts := eng.Options()
			opts.World.Gravity[2] = -1.0
			Expect(eng.SetOptions(opts)).To(Succeed())
			Expect(model.Gravity).To(BeNumerically("~", 1.0, 1e-9))
		})

		It("re-reads gravity into the model on every Simulate", func() {
			opts := eng.Options()
			opts.World.Gravity[2] = -3.0
			eng.SetOptions(opts) //nolint:errcheck
			model.Gravity = 9.81 // simulate drift since the last SetOptions
			Expect(eng.Simulate(dynamo.State{0.1, 0}, 0.2)).To(Succeed())
			Expect(model.Gravity).To(BeNumerically("~", 3.0, 1e-9))
		})
	})
})
