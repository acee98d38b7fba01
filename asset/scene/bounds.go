package scene

import (
	"math"

	"github.com/microsoft/morphcharts-sub000/types"
)

// An axis aligned bounding box.
type Bounds struct {
	Min types.Vec3
	Max types.Vec3
}

// Create an empty (inverted) bounding box.
func EmptyBounds() Bounds {
	return Bounds{
		Min: types.Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: types.Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Grow the bounds so that they include a point.
func (b Bounds) Extend(p types.Vec3) Bounds {
	return Bounds{Min: types.MinVec3(b.Min, p), Max: types.MaxVec3(b.Max, p)}
}

// Calculate the union of two bounding boxes.
func (b Bounds) Union(b2 Bounds) Bounds {
	return Bounds{Min: types.MinVec3(b.Min, b2.Min), Max: types.MaxVec3(b.Max, b2.Max)}
}

// Get the box centroid.
func (b Bounds) Centroid() types.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box size along each axis.
func (b Bounds) Diagonal() types.Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the box surface area. Empty boxes have zero area.
func (b Bounds) SurfaceArea() float32 {
	d := b.Diagonal()
	if d[0] < 0 || d[1] < 0 || d[2] < 0 {
		return 0
	}
	return 2 * (d[0]*d[1] + d[1]*d[2] + d[0]*d[2])
}

// Get the axis with the greatest extent.
func (b Bounds) MaxExtentAxis() int {
	return b.Diagonal().MaxAxis()
}

// Get the position of p relative to the box corners; (0,0,0) at Min and
// (1,1,1) at Max. Zero extent axes map to 0.
func (b Bounds) Offset(p types.Vec3) types.Vec3 {
	o := p.Sub(b.Min)
	d := b.Diagonal()
	for axis := 0; axis < 3; axis++ {
		if d[axis] > 0 {
			o[axis] /= d[axis]
		} else {
			o[axis] = 0
		}
	}
	return o
}
