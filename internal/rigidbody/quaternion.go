package rigidbody

import "math"

// Quaternion is (x, y, z, w), matching the (qx,qy,qz,qw) layout spec.md §3
// assigns to q[3:7] of a free-flyer configuration block. No third-party
// quaternion package turns up anywhere in the retrieved corpus (the closest,
// byke/ebiten, works purely in 2-D screen space), so this is a small
// hand-rolled implementation of exactly the group-exponential operation
// spec.md §4.4/§9 asks a rigid-body library to provide — kept intentionally
// minimal rather than growing into a general-purpose quaternion package.
type Quaternion [4]float64

// IdentityQuaternion is the no-rotation quaternion.
var IdentityQuaternion = Quaternion{0, 0, 0, 1}

// Norm returns the Euclidean norm of q.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
}

// Normalize returns q scaled to unit norm. If q is (near) zero it returns
// the identity quaternion rather than dividing by ~0.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n < 1e-12 {
		return IdentityQuaternion
	}
	return Quaternion{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}

// Mul returns the Hamilton product q*o (applies o first, then q).
func (q Quaternion) Mul(o Quaternion) Quaternion {
	x1, y1, z1, w1 := q[0], q[1], q[2], q[3]
	x2, y2, z2, w2 := o[0], o[1], o[2], o[3]
	return Quaternion{
		w1*x2 + x1*w2 + y1*z2 - z1*y2,
		w1*y2 - x1*z2 + y1*w2 + z1*x2,
		w1*z2 + x1*y2 - y1*x2 + z1*w2,
		w1*w2 - x1*x2 - y1*y2 - z1*z2,
	}
}

// ExpAngularVelocity returns the group-exponential of a body-frame angular
// velocity increment omega*dt: the small rotation that advancing at angular
// velocity omega for dt produces. This is the SO(3) piece of the manifold
// exponential spec.md §4.4 delegates to "the rigid-body library".
func ExpAngularVelocity(omega [3]float64, dt float64) Quaternion {
	theta := math.Sqrt(omega[0]*omega[0]+omega[1]*omega[1]+omega[2]*omega[2]) * dt
	if theta < 1e-12 {
		// Small-angle: exp(v) ~= 1 + v/2, renormalised here.
		return Quaternion{omega[0] * dt / 2, omega[1] * dt / 2, omega[2] * dt / 2, 1}.Normalize()
	}
	half := theta / 2
	s := math.Sin(half) / theta * dt // scale to unit axis, sin(half)/theta already folds in dt via theta
	return Quaternion{omega[0] * s, omega[1] * s, omega[2] * s, math.Cos(half)}.Normalize()
}

// RotationMatrix returns the 3x3 rotation matrix represented by q.
func (q Quaternion) RotationMatrix() [3][3]float64 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	return [3][3]float64{
		{1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy)},
		{2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx)},
		{2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy)},
	}
}

// Rotate applies q's rotation to vector v.
func (q Quaternion) Rotate(v [3]float64) [3]float64 {
	r := q.RotationMatrix()
	return [3]float64{
		r[0][0]*v[0] + r[0][1]*v[1] + r[0][2]*v[2],
		r[1][0]*v[0] + r[1][1]*v[1] + r[1][2]*v[2],
		r[2][0]*v[0] + r[2][1]*v[1] + r[2][2]*v[2],
	}
}

// RotateInverse applies q's inverse (transpose) rotation to vector v.
func (q Quaternion) RotateInverse(v [3]float64) [3]float64 {
	r := q.RotationMatrix()
	return [3]float64{
		r[0][0]*v[0] + r[1][0]*v[1] + r[2][0]*v[2],
		r[0][1]*v[0] + r[1][1]*v[1] + r[2][1]*v[2],
		r[0][2]*v[0] + r[1][2]*v[1] + r[2][2]*v[2],
	}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
