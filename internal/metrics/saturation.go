package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// saturationEps absorbs floating-point rounding at the saturation boundary
// itself, so a command exactly at the limit does not register as a
// violation.
const saturationEps = 1e-9

// Saturation checks spec.md §8 property 5: every logged u_cmd[i] stays
// within the model's effort limits. It reports the fraction of samples
// that violated at least one limit. Grounded on the same dynamo.Metric
// shape as ControlEffort and EnergyDrift; new for this rewrite since the
// teacher's metrics package has no saturation observer.
type Saturation struct {
	name       string
	limits     []float64
	violations int
	samples    int
}

// NewSaturation builds a Saturation metric around a model's per-actuated
// -joint effort limits (rigidbody.Model.EffortLimits).
func NewSaturation(limits []float64) *Saturation {
	return &Saturation{name: "saturation", limits: limits}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	for i, limit := range s.limits {
		if i >= len(u) {
			break
		}
		if math.Abs(u[i]) > limit+saturationEps {
			s.violations++
			return
		}
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.violations) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.violations = 0
	s.samples = 0
}

var _ dynamo.Metric = (*Saturation)(nil)
