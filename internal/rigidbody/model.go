// Package rigidbody defines the boundary the simulation core borrows from an
// external rigid-body dynamics library: URDF-derived kinematic trees,
// forward kinematics, the Articulated-Body Algorithm (ABA), the Recursive
// Newton-Euler Algorithm (RNEA), and manifold-consistent configuration
// integration (spec.md §1, §6, §9). None of that is implemented here in
// general form — a production build of this engine would link against a
// real rigid-body library the same way the teacher links against a compute
// backend interface (internal/compute in the teacher repo). What this
// package does provide are the read-only [Model] contract the engine
// programs against, and a handful of concrete, closed-form robots
// (single-joint pendulum, double pendulum, free-flyer point mass) that
// satisfy it, standing in for URDF-loaded models in tests and scenarios.
package rigidbody

import "github.com/san-kum/rigidsim/internal/dynamo"

// Wrench is a 6-D spatial force or twist: [Fx, Fy, Fz, Tx, Ty, Tz] (or the
// velocity analogue), always expressed in the frame documented by the
// function that produced it.
type Wrench [6]float64

// Add returns the entrywise sum of w and o.
func (w Wrench) Add(o Wrench) Wrench {
	var r Wrench
	for i := range w {
		r[i] = w[i] + o[i]
	}
	return r
}

// Scale returns w scaled by factor.
func (w Wrench) Scale(factor float64) Wrench {
	var r Wrench
	for i := range w {
		r[i] = w[i] * factor
	}
	return r
}

// FramePlacement is the world-frame pose and velocity of a kinematic frame,
// as produced by Model.ForwardKinematics.
type FramePlacement struct {
	Pos [3]float64    // world-frame translation
	Vel [3]float64    // world-frame linear velocity
	Rot [3][3]float64 // world-frame rotation matrix
}

// Model is the read-only surface of a borrowed rigid-body model (spec.md
// §1, §3, §5): kinematic tree sizes, joint bounds, contact frame indices,
// and the handful of algorithms the dynamics assembler (C4) needs. The
// caller guarantees a Model outlives the Engine it was passed to
// (spec.md §5, §9 "borrowed vs. owned collaborators").
type Model interface {
	// Nq, Nv, Nx are the configuration, velocity, and total state
	// dimensions (Nx == Nq+Nv).
	Nq() int
	Nv() int
	Nx() int

	// NMotors is the number of actuated joints, i.e. len(u_cmd).
	NMotors() int

	// HasFreeFlyer reports whether q[0:7] is a free-flyer
	// (translation + unit quaternion) block.
	HasFreeFlyer() bool

	// ActuatedPositionIdx and ActuatedVelocityIdx give, for each actuated
	// joint in order, its row in q and in v/generalised-force space.
	ActuatedPositionIdx() []int
	ActuatedVelocityIdx() []int

	// JointBoundsMin and JointBoundsMax give per-actuated-joint position
	// limits, indexed the same as ActuatedPositionIdx.
	JointBoundsMin() []float64
	JointBoundsMax() []float64

	// EffortLimits gives per-actuated-joint torque saturation limits,
	// indexed the same as ActuatedVelocityIdx.
	EffortLimits() []float64

	// ContactFrameIdx enumerates the frames at which ground contact is
	// evaluated.
	ContactFrameIdx() []int

	// ParentJointVelocityIdx gives the row in generalised-force space that
	// a contact frame's wrench should be accumulated into.
	ParentJointVelocityIdx(frameIdx int) int

	// ForwardKinematics refreshes all frame placements for the given
	// configuration and velocity. It must be called before
	// FramePlacement or FrameJointPlacement.
	ForwardKinematics(q, v dynamo.State) error

	// FramePlacement returns the world-frame pose/velocity of frameIdx.
	FramePlacement(frameIdx int) FramePlacement

	// FrameJointPlacement returns the (fixed) placement of frameIdx
	// relative to its parent joint's frame, used to re-express a
	// world-frame contact wrench in the joint frame.
	FrameJointPlacement(frameIdx int) FramePlacement

	// ABA is the Articulated-Body Algorithm: given configuration,
	// velocity, total generalised force, and the per-joint external
	// force accumulator, it returns the generalised acceleration.
	ABA(q, v, u dynamo.State, fext []Wrench) (dynamo.State, error)

	// RNEA is the Recursive Newton-Euler Algorithm: the generalised force
	// consistent with the given (q, v, a), ignoring external forces.
	RNEA(q, v, a dynamo.State) (dynamo.State, error)

	// Integrate advances q along the configuration manifold by the
	// tangent-space displacement vScaled = v*dt (spec.md §4.4, §9): the
	// group exponential for a free-flyer's SO(3) block, plain addition
	// for scalar joints.
	Integrate(q, vScaled dynamo.State) (dynamo.State, error)

	// Energy returns total mechanical energy (kinetic + potential) at
	// (q, v).
	Energy(q, v dynamo.State) float64

	// SetContactForce writes the i-th contact frame's last computed
	// wrench into the model's export buffer (spec.md §3 "force
	// accumulator", §5 "contact-force export buffer").
	SetContactForce(i int, w Wrench)

	// ContactForces reads back the export buffer written by
	// SetContactForce, most recent evaluation only.
	ContactForces() []Wrench

	// Reset clears any per-run scratch state (spec.md §4.7).
	Reset()
}

// GravitySetter is implemented by models that accept the world.gravity
// option (spec.md §6.2). Not every Model needs gravity — a purely
// kinematic mechanism might not — so the engine probes for this via a type
// assertion instead of requiring it on Model itself.
type GravitySetter interface {
	SetGravity(g [6]float64)
}
