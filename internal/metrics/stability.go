package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Stability reports the fraction of samples whose state stayed within a
// fixed divergence threshold. Adapted from the teacher's metrics.Stability,
// which observed the teacher's internal/sim.State/Control; generalised
// here to dynamo.State/dynamo.Control so it applies to any model.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{name: "stability", threshold: threshold}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	for _, val := range x {
		if math.Abs(val) > s.threshold {
			s.violations++
			return
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

var _ dynamo.Metric = (*Stability)(nil)
