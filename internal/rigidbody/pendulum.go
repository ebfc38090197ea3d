package rigidbody

import (
	"fmt"
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// Pendulum is a single actuated revolute joint under gravity, ported from
// the teacher's internal/physics/pendulum.go. It has no free-flyer, no
// contact frames, and one actuated joint — the minimal Model needed to
// exercise the joint-bound model (spec.md §4.2, S3) end to end.
type Pendulum struct {
	Mass    float64
	Length  float64
	Gravity float64
	QMin    float64
	QMax    float64
	Effort  float64

	trig *dynamo.TrigTable
}

// NewPendulum returns a pendulum with the teacher's default parameters and
// the joint bounds needed by scenario S3 (qmax = 0.5 rad).
func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Gravity: 9.81,
		QMin:    -0.5,
		QMax:    0.5,
		Effort:  100.0,
		trig:    dynamo.DefaultTrigTable,
	}
}

func (p *Pendulum) Nq() int      { return 1 }
func (p *Pendulum) Nv() int      { return 1 }
func (p *Pendulum) Nx() int      { return 2 }
func (p *Pendulum) NMotors() int { return 1 }

func (p *Pendulum) HasFreeFlyer() bool { return false }

func (p *Pendulum) ActuatedPositionIdx() []int { return []int{0} }
func (p *Pendulum) ActuatedVelocityIdx() []int { return []int{0} }

func (p *Pendulum) JointBoundsMin() []float64 { return []float64{p.QMin} }
func (p *Pendulum) JointBoundsMax() []float64 { return []float64{p.QMax} }
func (p *Pendulum) EffortLimits() []float64   { return []float64{p.Effort} }

func (p *Pendulum) ContactFrameIdx() []int                    { return nil }
func (p *Pendulum) ParentJointVelocityIdx(frameIdx int) int   { return 0 }
func (p *Pendulum) ForwardKinematics(q, v dynamo.State) error { return nil }
func (p *Pendulum) FramePlacement(frameIdx int) FramePlacement {
	return FramePlacement{}
}
func (p *Pendulum) FrameJointPlacement(frameIdx int) FramePlacement {
	return FramePlacement{}
}

func (p *Pendulum) ABA(q, v, u dynamo.State, fext []Wrench) (dynamo.State, error) {
	if len(q) != 1 || len(v) != 1 {
		return nil, fmt.Errorf("rigidbody: pendulum expects nq=nv=1, got %d/%d", len(q), len(v))
	}
	torque := 0.0
	if len(u) > 0 {
		torque = u[0]
	}
	sinTheta, _ := p.trig.SinCos(q[0])
	alpha := (torque - p.Mass*p.Gravity*p.Length*sinTheta) / (p.Mass * p.Length * p.Length)
	return dynamo.State{alpha}, nil
}

func (p *Pendulum) RNEA(q, v, a dynamo.State) (dynamo.State, error) {
	sinTheta, _ := p.trig.SinCos(q[0])
	torque := a[0]*p.Mass*p.Length*p.Length + p.Mass*p.Gravity*p.Length*sinTheta
	return dynamo.State{torque}, nil
}

func (p *Pendulum) Integrate(q, vScaled dynamo.State) (dynamo.State, error) {
	return dynamo.State{q[0] + vScaled[0]}, nil
}

func (p *Pendulum) Energy(q, v dynamo.State) float64 {
	_, cosTheta := p.trig.SinCos(q[0])
	speed := p.Length * v[0]
	ke := 0.5 * p.Mass * speed * speed
	pe := p.Mass * p.Gravity * p.Length * (1 - cosTheta)
	return ke + pe
}

func (p *Pendulum) SetContactForce(i int, w Wrench) {}
func (p *Pendulum) ContactForces() []Wrench          { return nil }
func (p *Pendulum) Reset()                           {}

// SetGravity implements rigidbody.GravitySetter. A planar pendulum only
// swings against the component of gravity in its own plane; taking the
// magnitude of the 6-vector's linear part is the closest a scalar model can
// come to spec.md §6.2's world.gravity option.
func (p *Pendulum) SetGravity(g [6]float64) {
	p.Gravity = math.Sqrt(g[0]*g[0] + g[1]*g[1] + g[2]*g[2])
}

var _ Model = (*Pendulum)(nil)
var _ GravitySetter = (*Pendulum)(nil)
