package rigidbody

import (
	"math"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// DoublePendulum is an unactuated, undamped, uncontacted two-link pendulum,
// ported from the teacher's internal/models/double_pendulum.go. With no
// actuated joints and no contact frames it is the Model spec.md §8's S6
// energy-conservation scenario runs against.
type DoublePendulum struct {
	M1, M2  float64
	L1, L2  float64
	Gravity float64
}

func NewDoublePendulum() *DoublePendulum {
	return &DoublePendulum{M1: 1, M2: 1, L1: 1, L2: 1, Gravity: 9.81}
}

func (d *DoublePendulum) Nq() int      { return 2 }
func (d *DoublePendulum) Nv() int      { return 2 }
func (d *DoublePendulum) Nx() int      { return 4 }
func (d *DoublePendulum) NMotors() int { return 0 }

func (d *DoublePendulum) HasFreeFlyer() bool { return false }

func (d *DoublePendulum) ActuatedPositionIdx() []int { return nil }
func (d *DoublePendulum) ActuatedVelocityIdx() []int { return nil }
func (d *DoublePendulum) JointBoundsMin() []float64  { return nil }
func (d *DoublePendulum) JointBoundsMax() []float64  { return nil }
func (d *DoublePendulum) EffortLimits() []float64    { return nil }

func (d *DoublePendulum) ContactFrameIdx() []int                    { return nil }
func (d *DoublePendulum) ParentJointVelocityIdx(frameIdx int) int   { return 0 }
func (d *DoublePendulum) ForwardKinematics(q, v dynamo.State) error { return nil }
func (d *DoublePendulum) FramePlacement(frameIdx int) FramePlacement {
	return FramePlacement{}
}
func (d *DoublePendulum) FrameJointPlacement(frameIdx int) FramePlacement {
	return FramePlacement{}
}

// massMatrix returns the 2x2 generalised mass matrix for the coupled
// two-link pendulum at configuration q.
func (d *DoublePendulum) massMatrix(q dynamo.State) (m11, m12, m22 float64) {
	cosD := math.Cos(q[0] - q[1])
	m11 = (d.M1 + d.M2) * d.L1 * d.L1
	m12 = d.M2 * d.L1 * d.L2 * cosD
	m22 = d.M2 * d.L2 * d.L2
	return
}

// biasForce returns the Coriolis/centrifugal + gravity generalised force
// (the terms that, together with the mass matrix, make up the equations of
// motion M(q)*a + bias(q,v) = u).
func (d *DoublePendulum) biasForce(q, v dynamo.State) (b1, b2 float64) {
	theta1, theta2, omega1, omega2 := q[0], q[1], v[0], v[1]
	sinD := math.Sin(theta1 - theta2)
	b1 = d.M2*d.L1*d.L2*omega2*omega2*sinD + (d.M1+d.M2)*d.Gravity*d.L1*math.Sin(theta1)
	b2 = -d.M2*d.L1*d.L2*omega1*omega1*sinD + d.M2*d.Gravity*d.L2*math.Sin(theta2)
	return
}

func (d *DoublePendulum) ABA(q, v, u dynamo.State, fext []Wrench) (dynamo.State, error) {
	m11, m12, m22 := d.massMatrix(q)
	b1, b2 := d.biasForce(q, v)
	u1, u2 := 0.0, 0.0
	if len(u) > 0 {
		u1 = u[0]
	}
	if len(u) > 1 {
		u2 = u[1]
	}
	det := m11*m22 - m12*m12
	rhs1 := u1 - b1
	rhs2 := u2 - b2
	a1 := (m22*rhs1 - m12*rhs2) / det
	a2 := (m11*rhs2 - m12*rhs1) / det
	return dynamo.State{a1, a2}, nil
}

func (d *DoublePendulum) RNEA(q, v, a dynamo.State) (dynamo.State, error) {
	m11, m12, m22 := d.massMatrix(q)
	b1, b2 := d.biasForce(q, v)
	u1 := m11*a[0] + m12*a[1] + b1
	u2 := m12*a[0] + m22*a[1] + b2
	return dynamo.State{u1, u2}, nil
}

func (d *DoublePendulum) Integrate(q, vScaled dynamo.State) (dynamo.State, error) {
	return dynamo.State{q[0] + vScaled[0], q[1] + vScaled[1]}, nil
}

func (d *DoublePendulum) Energy(q, v dynamo.State) float64 {
	theta1, theta2, omega1, omega2 := q[0], q[1], v[0], v[1]
	v1sq := d.L1 * d.L1 * omega1 * omega1
	v2sq := d.L1*d.L1*omega1*omega1 + d.L2*d.L2*omega2*omega2 +
		2*d.L1*d.L2*omega1*omega2*math.Cos(theta1-theta2)
	ke := 0.5*d.M1*v1sq + 0.5*d.M2*v2sq
	y1 := -d.L1 * math.Cos(theta1)
	y2 := y1 - d.L2*math.Cos(theta2)
	pe := d.M1*d.Gravity*y1 + d.M2*d.Gravity*y2
	return ke + pe
}

func (d *DoublePendulum) SetContactForce(i int, w Wrench) {}
func (d *DoublePendulum) ContactForces() []Wrench          { return nil }
func (d *DoublePendulum) Reset()                           {}

// SetGravity implements rigidbody.GravitySetter, same convention as Pendulum.
func (d *DoublePendulum) SetGravity(g [6]float64) {
	d.Gravity = math.Sqrt(g[0]*g[0] + g[1]*g[1] + g[2]*g[2])
}

var _ Model = (*DoublePendulum)(nil)
var _ GravitySetter = (*DoublePendulum)(nil)
