package controller

import (
	"sync"

	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// Manual is a controller whose command vector is set externally (e.g. from
// an interactive session or a scripted torque profile) rather than
// computed from state. Ported from the teacher's control.ManualController
// ("Hand of God" mouse-force controller), generalised to model.NMotors()
// instead of a fixed 3-element vector.
type Manual struct {
	NopInternal

	mu sync.Mutex
	u  dynamo.Control
}

func NewManual(nmotors int) *Manual {
	return &Manual{u: make(dynamo.Control, nmotors)}
}

// SetControl updates the stored command vector. The caller must not do
// this while a run is in flight (spec.md §5 "ordering guarantees").
func (m *Manual) SetControl(u dynamo.Control) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(u) != len(m.u) {
		return
	}
	copy(m.u, u)
}

func (m *Manual) ComputeCommand(model rigidbody.Model, t float64, q, v dynamo.State) (dynamo.Control, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(dynamo.Control, len(m.u))
	copy(out, m.u)
	return out, nil
}

func (m *Manual) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.u {
		m.u[i] = 0
	}
}

var _ AbstractController = (*Manual)(nil)
