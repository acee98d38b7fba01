package kernel

import (
	"math"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/types"
)

// Floats per geometry buffer entry: segment color, normal and depth.
const GBufferStride = 8

// Depth written for camera rays that miss the scene.
const missDepth float32 = -1

// Visualize the surface normal in rgb; alpha holds the distance to the
// hit along the camera ray or missDepth.
func (w *World) normalSample(r Ray) (types.Vec4, bool) {
	var rec HitRecord
	if !w.Hit(r, RayEpsilon, math32.MaxFloat32, &rec) {
		return types.Vec4{0, 0, 0, missDepth}, false
	}
	n := rec.Normal
	return types.Vec4{0.5*n[0] + 0.5, 0.5*n[1] + 0.5, 0.5*n[2] + 0.5, rec.T}, true
}

// Get the segment color of the primitive hit by a camera ray.
func (w *World) segmentSample(r Ray) types.Vec4 {
	var rec HitRecord
	if !w.Hit(r, RayEpsilon, math32.MaxFloat32, &rec) {
		return types.Vec4{}
	}
	return w.Primitives[rec.Primitive].SegmentColor
}

// Get the surface UV of the primitive hit by a camera ray.
func (w *World) texCoordSample(r Ray) types.Vec4 {
	var rec HitRecord
	if !w.Hit(r, RayEpsilon, math32.MaxFloat32, &rec) {
		return types.Vec4{}
	}
	return types.Vec4{rec.UV[0], rec.UV[1], 0, 1}
}

// Write the segment color, normal and depth seen by a camera ray into a
// geometry buffer entry.
func (w *World) geometrySample(r Ray, out []float32) {
	var rec HitRecord
	if !w.Hit(r, RayEpsilon, math32.MaxFloat32, &rec) {
		for index := range out[:GBufferStride] {
			out[index] = 0
		}
		out[7] = missDepth
		return
	}
	seg := w.Primitives[rec.Primitive].SegmentColor
	copy(out[0:4], seg[:])
	copy(out[4:7], rec.Normal[:])
	out[7] = rec.T
}

// Compare a geometry buffer entry against its neighbors and return 1 if it
// lies on a segment, normal or depth discontinuity.
func edgeAt(gbuf []float32, stride, x, y int) float32 {
	center := gbuf[(y*stride+x)*GBufferStride:][:GBufferStride]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			other := gbuf[((y+dy)*stride+x+dx)*GBufferStride:][:GBufferStride]
			if isEdge(center, other) {
				return 1
			}
		}
	}
	return 0
}

const (
	segmentEdgeThreshold float32 = 1e-3
	normalEdgeThreshold  float32 = 0.8
	depthEdgeThreshold   float32 = 0.05
)

func isEdge(a, b []float32) bool {
	aHit, bHit := a[7] >= 0, b[7] >= 0
	if aHit != bHit {
		return true
	}
	if !aHit {
		return false
	}

	for index := 0; index < 4; index++ {
		if math32.Abs(a[index]-b[index]) > segmentEdgeThreshold {
			return true
		}
	}
	if a[4]*b[4]+a[5]*b[5]+a[6]*b[6] < normalEdgeThreshold {
		return true
	}
	return math32.Abs(a[7]-b[7]) > depthEdgeThreshold*math32.Max(a[7], b[7])
}

// Atomically fold a depth value into a (min, max) pair stored as float32
// bits. Depths are non-negative so their bit patterns order like the
// values.
func updateDepthRange(depthRange []uint32, depth float32) {
	bits := math.Float32bits(depth)
	for {
		old := atomic.LoadUint32(&depthRange[0])
		if bits >= old || atomic.CompareAndSwapUint32(&depthRange[0], old, bits) {
			break
		}
	}
	for {
		old := atomic.LoadUint32(&depthRange[1])
		if bits <= old || atomic.CompareAndSwapUint32(&depthRange[1], old, bits) {
			break
		}
	}
}
