package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

func pendulumEnergy(q, v dynamo.State) float64 {
	theta, omega := q[0], v[0]
	ke := 0.5 * omega * omega
	pe := 9.81 * (1 - math.Cos(theta))
	return ke + pe
}

func TestEnergyDrift_ZeroForConstantEnergy(t *testing.T) {
	m := NewEnergyDrift(pendulumEnergy, 1, 1)
	x := dynamo.State{math.Pi / 4, 0}
	for i := 0; i < 5; i++ {
		m.Observe(x, dynamo.Control{}, float64(i))
	}
	if got := m.Value(); got > 1e-12 {
		t.Errorf("expected zero drift for a constant energy, got %v", got)
	}
}

func TestEnergyDrift_TracksMaxRelativeDeviation(t *testing.T) {
	m := NewEnergyDrift(pendulumEnergy, 1, 1)
	m.Observe(dynamo.State{math.Pi / 4, 0}, dynamo.Control{}, 0)
	m.Observe(dynamo.State{math.Pi / 2, 0}, dynamo.Control{}, 1)
	if m.Value() <= 0 {
		t.Error("expected nonzero drift after an energy change")
	}
}

func TestEnergyDrift_Reset(t *testing.T) {
	m := NewEnergyDrift(pendulumEnergy, 1, 1)
	m.Observe(dynamo.State{1, 1}, dynamo.Control{}, 0)
	m.Observe(dynamo.State{2, 2}, dynamo.Control{}, 1)
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}
