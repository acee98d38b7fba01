package types

import "github.com/chewxy/math32"

// Quaternion stored as a vector part and a scalar part. The binary encoders
// write it as (x, y, z, w).
type Quat struct {
	V Vec3
	W float32
}

// Create identity quaternion.
func QuatIdent() Quat {
	return Quat{
		V: Vec3{},
		W: 1.0,
	}
}

// Create a quaternion from an axis vector and an angle.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	sin, cos := math32.Sincos(angle * 0.5)
	return Quat{
		V: axis.Normalize().Mul(sin),
		W: cos,
	}
}

// Create a quaternion from its (x, y, z, w) components.
func QuatXYZW(x, y, z, w float32) Quat {
	return Quat{V: Vec3{x, y, z}, W: w}
}

// Returns the (x, y, z, w) components of the quaternion.
func (q1 Quat) XYZW() Vec4 {
	return Vec4{q1.V[0], q1.V[1], q1.V[2], q1.W}
}

// Returns true if this is the identity rotation.
func (q1 Quat) IsIdent() bool {
	return q1.W == 1 && q1.V[0] == 0 && q1.V[1] == 0 && q1.V[2] == 0
}

// Rotates a vector by the rotation this quaternion represents.
func (q1 Quat) Rotate(v Vec3) Vec3 {
	cross := q1.V.Cross(v)
	// v + 2q_w * (q_v x v) + 2q_v x (q_v x v)
	return v.Add(cross.Mul(2 * q1.W)).Add(q1.V.Mul(2).Cross(cross))
}

// Rotates a vector by the inverse of a unit quaternion.
func (q1 Quat) InverseRotate(v Vec3) Vec3 {
	return q1.Conjugate().Rotate(v)
}

// Multiplies two quaternions. Multiplication is not commutative.
func (q1 Quat) Mul(q2 Quat) Quat {
	return Quat{
		q1.V.Cross(q2.V).Add(q2.V.Mul(q1.W)).Add(q1.V.Mul(q2.W)),
		q1.W*q2.W - q1.V.Dot(q2.V),
	}
}

// Returns the length of the quaternion.
func (q1 Quat) Len() float32 {
	return math32.Sqrt(q1.W*q1.W + q1.V[0]*q1.V[0] + q1.V[1]*q1.V[1] + q1.V[2]*q1.V[2])
}

// Normalizes the quaternion, returning its versor (unit quaternion). A zero
// quaternion normalizes to the identity.
func (q1 Quat) Normalize() Quat {
	length := q1.Len()

	if math32.Abs(1-length) < floatCmpEpsilon {
		return q1
	}
	if length == 0 {
		return QuatIdent()
	}

	return Quat{q1.V.Mul(1 / length), q1.W / length}
}

// The conjugate of a quaternion. For unit quaternions this is the inverse.
func (q1 Quat) Conjugate() Quat {
	return Quat{q1.V.Neg(), q1.W}
}

// The inverse of a quaternion. The inverse is equivalent
// to the conjugate divided by the square of the length.
func (q1 Quat) Inverse() Quat {
	scaler := 1.0 / (q1.V.Dot(q1.V) + q1.W*q1.W)
	return Quat{
		q1.V.Mul(-1.0 * scaler),
		q1.W * scaler,
	}
}
