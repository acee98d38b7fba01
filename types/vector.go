package types

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

type Vec2 f32.Vec2
type Vec3 f32.Vec3
type Vec4 f32.Vec4

// Define a 2 component vector.
func XY(x, y float32) Vec2 {
	return Vec2{x, y}
}

// Define a 3 component vector.
func XYZ(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Define a 4 component vector.
func XYZW(x, y, z, w float32) Vec4 {
	return Vec4{x, y, z, w}
}

// Define a 3 component vector with all components set to s.
func Splat3(s float32) Vec3 {
	return Vec3{s, s, s}
}

// Expand a 2 component vector to a Vec3
func (v Vec2) Vec3(z float32) Vec3 {
	return Vec3{v[0], v[1], z}
}

// Add a vector.
func (v Vec2) Add(v2 Vec2) Vec2 {
	return Vec2{v[0] + v2[0], v[1] + v2[1]}
}

// Subtract a vector.
func (v Vec2) Sub(v2 Vec2) Vec2 {
	return Vec2{v[0] - v2[0], v[1] - v2[1]}
}

// Multiply a 2 component vector with a scalar.
func (v Vec2) Mul(s float32) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

// Calculate dot product of 2 vectors
func (v Vec2) Dot(v2 Vec2) float32 {
	return v[0]*v2[0] + v[1]*v2[1]
}

// Get 2 component vector length.
func (v Vec2) Len() float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Expand a 3 component vector to a Vec4.
func (v Vec3) Vec4(w float32) Vec4 {
	return Vec4{v[0], v[1], v[2], w}
}

// Add a vector.
func (v Vec3) Add(v2 Vec3) Vec3 {
	return Vec3{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2]}
}

// Subtract a vector.
func (v Vec3) Sub(v2 Vec3) Vec3 {
	return Vec3{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

// Multiply a 3 component vector with a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Multiply two vectors component-wise.
func (v Vec3) MulVec(v2 Vec3) Vec3 {
	return Vec3{v[0] * v2[0], v[1] * v2[1], v[2] * v2[2]}
}

// Negate vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Component-wise absolute value.
func (v Vec3) Abs() Vec3 {
	return Vec3{math32.Abs(v[0]), math32.Abs(v[1]), math32.Abs(v[2])}
}

// Component-wise exponent.
func (v Vec3) Exp() Vec3 {
	return Vec3{math32.Exp(v[0]), math32.Exp(v[1]), math32.Exp(v[2])}
}

// Get 3 component vector length.
func (v Vec3) Len() float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Get squared vector length.
func (v Vec3) LenSq() float32 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// Normalize 3 component vector. Zero-length vectors are returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < floatCmpEpsilon {
		return Vec3{}
	}
	l = 1.0 / l
	return Vec3{v[0] * l, v[1] * l, v[2] * l}
}

// Calculate dot product of 2 vectors
func (v Vec3) Dot(v2 Vec3) float32 {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2]
}

// Calculate cross product of 2 vectors.
func (v Vec3) Cross(v2 Vec3) Vec3 {
	return Vec3{v[1]*v2[2] - v[2]*v2[1], v[2]*v2[0] - v[0]*v2[2], v[0]*v2[1] - v[1]*v2[0]}
}

// Get the largest component value.
func (v Vec3) MaxComponent() float32 {
	return math32.Max(v[0], math32.Max(v[1], v[2]))
}

// Get the index of the component with the largest value.
func (v Vec3) MaxAxis() int {
	if v[0] > v[1] && v[0] > v[2] {
		return 0
	} else if v[1] > v[2] {
		return 1
	}
	return 2
}

// Reflect v around normal n.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Refract unit vector v through a surface with unit normal n. The etaRatio
// argument is the ratio of the incident to transmitted refractive indices.
func (v Vec3) Refract(n Vec3, etaRatio float32) Vec3 {
	cosTheta := math32.Min(v.Neg().Dot(n), 1.0)
	perp := v.Add(n.Mul(cosTheta)).Mul(etaRatio)
	parallel := n.Mul(-math32.Sqrt(math32.Abs(1.0 - perp.LenSq())))
	return perp.Add(parallel)
}

// Linearly interpolate between v and v2.
func (v Vec3) Lerp(v2 Vec3, t float32) Vec3 {
	return v.Mul(1 - t).Add(v2.Mul(t))
}

// Returns true if all components are close to zero.
func (v Vec3) NearZero() bool {
	const s = 1e-8
	return math32.Abs(v[0]) < s && math32.Abs(v[1]) < s && math32.Abs(v[2]) < s
}

// Reduce a 4 component vector to a Vec3.
func (v Vec4) Vec3() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}

// Add a vector.
func (v Vec4) Add(v2 Vec4) Vec4 {
	return Vec4{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2], v[3] + v2[3]}
}

// Subtract a vector.
func (v Vec4) Sub(v2 Vec4) Vec4 {
	return Vec4{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2], v[3] - v2[3]}
}

// Multiply 4 component vector with scalar.
func (v Vec4) Mul(s float32) Vec4 {
	return Vec4{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

// Get 4 component vector length.
func (v Vec4) Len() float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2] + v[3]*v[3])
}

// Normalize 4 component vector.
func (v Vec4) Normalize() Vec4 {
	l := v.Len()
	if l < floatCmpEpsilon {
		return Vec4{}
	}
	l = 1.0 / l
	return Vec4{v[0] * l, v[1] * l, v[2] * l, v[3] * l}
}

// Calc min component from two vectors
func MinVec3(v1, v2 Vec3) Vec3 {
	out := v1
	if v2[0] < out[0] {
		out[0] = v2[0]
	}
	if v2[1] < out[1] {
		out[1] = v2[1]
	}
	if v2[2] < out[2] {
		out[2] = v2[2]
	}
	return out
}

// Calc maxcomponent from two vectors
func MaxVec3(v1, v2 Vec3) Vec3 {
	out := v1
	if v2[0] > out[0] {
		out[0] = v2[0]
	}
	if v2[1] > out[1] {
		out[1] = v2[1]
	}
	if v2[2] > out[2] {
		out[2] = v2[2]
	}
	return out
}
