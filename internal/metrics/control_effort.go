package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// ControlEffort tracks the mean L1 norm of the commanded torque across a
// run. Ported unchanged in shape from the teacher's metrics.ControlEffort.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{name: "control_effort"}
}

func (c *ControlEffort) Name() string { return c.name }

func (c *ControlEffort) Observe(x dynamo.State, u dynamo.Control, t float64) {
	for _, val := range u {
		c.sum += math.Abs(val)
	}
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

var _ dynamo.Metric = (*ControlEffort)(nil)
