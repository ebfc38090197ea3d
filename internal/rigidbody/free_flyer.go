package rigidbody

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/dynamo"
)

// FreeFlyer is an unactuated 6-DoF rigid body — translation plus unit
// quaternion orientation — with a single ground-contact frame offset along
// its body-frame -z axis. It is the Model spec.md §8's S1 (free fall) and
// S2 (resting contact) scenarios run against, adapted from the teacher's
// internal/physics/drone.go (planar free body under gravity) and
// internal/physics/gyroscope.go (rotational dynamics via Euler's
// equations), generalised to 3-D SE(3) motion the way spec.md §3/§4.4
// requires for a free-flyer joint.
type FreeFlyer struct {
	Mass          float64
	Inertia       [3]float64 // principal moments of inertia, body frame
	ContactOffset [3]float64 // contact point, body frame, relative to origin

	contactForce Wrench
	framePos     [3]float64
	frameVel     [3]float64
	frameRot     [3][3]float64
	gravity      [3]float64
}

// NewFreeFlyer returns a solid sphere of the given mass and radius (principal
// inertia 0.4*mass*radius² about each axis) with its single contact frame at
// the bottom of the sphere.
func NewFreeFlyer(mass, radius float64) *FreeFlyer {
	return &FreeFlyer{
		Mass:          mass,
		Inertia:       [3]float64{0.4 * mass * radius * radius, 0.4 * mass * radius * radius, 0.4 * mass * radius * radius},
		ContactOffset: [3]float64{0, 0, -radius},
		gravity:       [3]float64{0, 0, -9.81},
	}
}

func (f *FreeFlyer) Nq() int      { return 7 }
func (f *FreeFlyer) Nv() int      { return 6 }
func (f *FreeFlyer) Nx() int      { return 13 }
func (f *FreeFlyer) NMotors() int { return 0 }

func (f *FreeFlyer) HasFreeFlyer() bool { return true }

func (f *FreeFlyer) ActuatedPositionIdx() []int { return nil }
func (f *FreeFlyer) ActuatedVelocityIdx() []int { return nil }
func (f *FreeFlyer) JointBoundsMin() []float64  { return nil }
func (f *FreeFlyer) JointBoundsMax() []float64  { return nil }
func (f *FreeFlyer) EffortLimits() []float64    { return nil }

func (f *FreeFlyer) ContactFrameIdx() []int                  { return []int{0} }
func (f *FreeFlyer) ParentJointVelocityIdx(frameIdx int) int { return 0 }

func (f *FreeFlyer) quaternion(q dynamo.State) Quaternion {
	return Quaternion{q[3], q[4], q[5], q[6]}
}

func (f *FreeFlyer) ForwardKinematics(q, v dynamo.State) error {
	if len(q) != 7 || len(v) != 6 {
		return fmt.Errorf("rigidbody: free flyer expects nq=7, nv=6, got %d/%d", len(q), len(v))
	}
	quat := f.quaternion(q).Normalize()
	f.frameRot = quat.RotationMatrix()

	origin := [3]float64{q[0], q[1], q[2]}
	offsetWorld := quat.Rotate(f.ContactOffset)
	f.framePos = [3]float64{origin[0] + offsetWorld[0], origin[1] + offsetWorld[1], origin[2] + offsetWorld[2]}

	vLin := [3]float64{v[0], v[1], v[2]}
	vAng := [3]float64{v[3], v[4], v[5]}
	pointVelBody := add3(vLin, cross(vAng, f.ContactOffset))
	f.frameVel = quat.Rotate(pointVelBody)
	return nil
}

func (f *FreeFlyer) FramePlacement(frameIdx int) FramePlacement {
	return FramePlacement{Pos: f.framePos, Vel: f.frameVel, Rot: f.frameRot}
}

// FrameJointPlacement returns the contact offset's fixed placement relative
// to the free-flyer joint (its own body frame): identity rotation, the
// configured offset as translation.
func (f *FreeFlyer) FrameJointPlacement(frameIdx int) FramePlacement {
	return FramePlacement{
		Pos: f.ContactOffset,
		Rot: [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
}

func (f *FreeFlyer) ABA(q, v, u dynamo.State, fext []Wrench) (dynamo.State, error) {
	quat := f.quaternion(q).Normalize()
	vLin := [3]float64{v[0], v[1], v[2]}
	vAng := [3]float64{v[3], v[4], v[5]}

	var wrench Wrench
	if len(fext) > 0 {
		wrench = fext[0]
	}
	forceBody := [3]float64{wrench[0], wrench[1], wrench[2]}
	torqueBody := [3]float64{wrench[3], wrench[4], wrench[5]}

	gravityBody := quat.RotateInverse(f.gravity)

	// a_lin = F/m + g - omega x v  (transport theorem, body-frame twist)
	fOverM := scale3(forceBody, 1/f.Mass)
	aLin := sub3(add3(fOverM, gravityBody), cross(vAng, vLin))

	// I*a_ang = torque - omega x (I*omega)
	iOmega := [3]float64{f.Inertia[0] * vAng[0], f.Inertia[1] * vAng[1], f.Inertia[2] * vAng[2]}
	rhs := sub3(torqueBody, cross(vAng, iOmega))
	aAng := [3]float64{rhs[0] / f.Inertia[0], rhs[1] / f.Inertia[1], rhs[2] / f.Inertia[2]}

	return dynamo.State{aLin[0], aLin[1], aLin[2], aAng[0], aAng[1], aAng[2]}, nil
}

func (f *FreeFlyer) RNEA(q, v, a dynamo.State) (dynamo.State, error) {
	quat := f.quaternion(q).Normalize()
	vLin := [3]float64{v[0], v[1], v[2]}
	vAng := [3]float64{v[3], v[4], v[5]}
	aLin := [3]float64{a[0], a[1], a[2]}
	aAng := [3]float64{a[3], a[4], a[5]}

	gravityBody := quat.RotateInverse(f.gravity)

	forceBody := scale3(sub3(add3(aLin, cross(vAng, vLin)), gravityBody), f.Mass)

	iOmega := [3]float64{f.Inertia[0] * vAng[0], f.Inertia[1] * vAng[1], f.Inertia[2] * vAng[2]}
	iAlpha := [3]float64{f.Inertia[0] * aAng[0], f.Inertia[1] * aAng[1], f.Inertia[2] * aAng[2]}
	torqueBody := add3(iAlpha, cross(vAng, iOmega))

	return dynamo.State{forceBody[0], forceBody[1], forceBody[2], torqueBody[0], torqueBody[1], torqueBody[2]}, nil
}

func (f *FreeFlyer) Integrate(q, vScaled dynamo.State) (dynamo.State, error) {
	quat := f.quaternion(q).Normalize()
	vLin := [3]float64{vScaled[0], vScaled[1], vScaled[2]}
	vAng := [3]float64{vScaled[3], vScaled[4], vScaled[5]}

	posDelta := quat.Rotate(vLin)
	nextPos := [3]float64{q[0] + posDelta[0], q[1] + posDelta[1], q[2] + posDelta[2]}

	deltaQuat := ExpAngularVelocity(vAng, 1.0) // vAng already scaled by dt
	nextQuat := quat.Mul(deltaQuat).Normalize()

	return dynamo.State{
		nextPos[0], nextPos[1], nextPos[2],
		nextQuat[0], nextQuat[1], nextQuat[2], nextQuat[3],
	}, nil
}

func (f *FreeFlyer) Energy(q, v dynamo.State) float64 {
	quat := f.quaternion(q).Normalize()
	vLin := [3]float64{v[0], v[1], v[2]}
	vAng := [3]float64{v[3], v[4], v[5]}
	vLinWorld := quat.Rotate(vLin)

	speedSq := vLinWorld[0]*vLinWorld[0] + vLinWorld[1]*vLinWorld[1] + vLinWorld[2]*vLinWorld[2]
	keLin := 0.5 * f.Mass * speedSq
	keRot := 0.5 * (f.Inertia[0]*vAng[0]*vAng[0] + f.Inertia[1]*vAng[1]*vAng[1] + f.Inertia[2]*vAng[2]*vAng[2])
	pe := -f.Mass * f.gravity[2] * q[2]
	return keLin + keRot + pe
}

func (f *FreeFlyer) SetContactForce(i int, w Wrench) {
	if i == 0 {
		f.contactForce = w
	}
}

func (f *FreeFlyer) ContactForces() []Wrench { return []Wrench{f.contactForce} }

func (f *FreeFlyer) Reset() {
	f.contactForce = Wrench{}
}

// SetGravity implements rigidbody.GravitySetter: only the linear part of
// the 6-vector option (spec.md §6.2 world.gravity) applies to a point mass.
func (f *FreeFlyer) SetGravity(g [6]float64) {
	f.gravity = [3]float64{g[0], g[1], g[2]}
}

var _ Model = (*FreeFlyer)(nil)

func add3(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub3(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func scale3(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}
