// Package metrics implements dynamo.Metric observers that reduce a run's
// samples to a single number (spec.md §8 properties 5 and 6), adapted from
// the teacher's internal/metrics package.
package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// EnergyDrift tracks the maximum relative deviation of total mechanical
// energy from its value at the first observed sample (spec.md §8 property
// 6, S6). Ported from the teacher's metrics.EnergyDrift, which type-asserted
// its dynamo.System collaborator for a dynamo.Hamiltonian.Energy(x) method;
// this rewrite takes that energy function directly as a closure over
// rigidbody.Model.Energy, since every Model in this package computes energy
// unconditionally rather than optionally.
type EnergyDrift struct {
	name     string
	energyFn func(q, v dynamo.State) float64
	nq, nv   int

	initialEnergy float64
	maxDrift      float64
	samples       int
}

// NewEnergyDrift builds an EnergyDrift metric around a model's energy
// function and its (nq, nv) split.
func NewEnergyDrift(energyFn func(q, v dynamo.State) float64, nq, nv int) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", energyFn: energyFn, nq: nq, nv: nv}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, u dynamo.Control, t float64) {
	q, v := dynamo.Split(x, e.nq, e.nv)
	energy := e.energyFn(q, v)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

var _ dynamo.Metric = (*EnergyDrift)(nil)
