package controller

import (
	"github.com/san-kum/rigidsim/internal/dynamo"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// None is the passthrough controller: zero command, zero internal
// dynamics. Ported from the teacher's control.None / controllers.None.
type None struct {
	NopInternal
}

func NewNone() *None { return &None{} }

func (n *None) ComputeCommand(model rigidbody.Model, t float64, q, v dynamo.State) (dynamo.Control, error) {
	return make(dynamo.Control, model.NMotors()), nil
}

func (n *None) Reset() {}

var _ AbstractController = (*None)(nil)
