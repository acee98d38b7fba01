package types

import "github.com/chewxy/math32"

const floatCmpEpsilon float32 = 1e-6

// Returns true if two vectors are equal within the given tolerance.
func ApproxEqual(v1, v2 Vec3, threshold float32) bool {
	return math32.Abs(v1[0]-v2[0]) <= threshold &&
		math32.Abs(v1[1]-v2[1]) <= threshold &&
		math32.Abs(v1[2]-v2[2]) <= threshold
}
