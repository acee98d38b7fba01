package kernel

import (
	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/types"
)

// Maximum BVH depth supported by traversal.
const traversalStackSize = 64

// Test a ray against an axis aligned box given its precomputed inverse
// direction. Returns true if the box overlaps (tMin, tMax).
func hitBounds(center, size types.Vec3, origin, invDir types.Vec3, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		half := 0.5 * size[axis]
		t0 := (center[axis] - half - origin[axis]) * invDir[axis]
		t1 := (center[axis] + half - origin[axis]) * invDir[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tMin = math32.Max(t0, tMin)
		tMax = math32.Min(t1, tMax)
		if tMax < tMin {
			return false
		}
	}
	return true
}

// Find the closest primitive hit along a ray inside (tMin, tMax) by
// walking the BVH depth first. Interior nodes visit the child on the near
// side of the split axis first so that the closest hit found so far can
// prune the far subtree.
func (w *World) closestHit(r Ray, tMin, tMax float32, hit *SurfaceHit) bool {
	if len(w.Nodes) == 0 {
		return false
	}

	invDir := types.Vec3{safeInv(r.Direction[0]), safeInv(r.Direction[1]), safeInv(r.Direction[2])}
	dirIsNeg := [3]bool{invDir[0] < 0, invDir[1] < 0, invDir[2] < 0}

	var stack [traversalStackSize]uint32
	stackSize := 0
	nodeIndex := uint32(0)
	closest := tMax
	found := false

	for {
		node := &w.Nodes[nodeIndex]
		if hitBounds(node.Center, node.Size, r.Origin, invDir, tMin, closest) {
			if node.IsLeaf() {
				first, count := node.Primitives()
				for index := first; index < first+uint32(count); index++ {
					if IntersectPrimitive(&w.Primitives[index], r, tMin, closest, w.Atlas, hit) {
						hit.Primitive = int(index)
						closest = hit.T
						found = true
					}
				}
			} else {
				near, far := nodeIndex+1, node.Offset
				if dirIsNeg[node.Axis] {
					near, far = far, near
				}
				if stackSize < traversalStackSize {
					stack[stackSize] = far
					stackSize++
				}
				nodeIndex = near
				continue
			}
		}

		if stackSize == 0 {
			break
		}
		stackSize--
		nodeIndex = stack[stackSize]
	}

	return found
}

// Trace a ray through the world. On a hit the record advances to the new
// surface hit, keeping the state of the previous hit for absorption.
func (w *World) Hit(r Ray, tMin, tMax float32, rec *HitRecord) bool {
	var hit SurfaceHit
	if !w.closestHit(r, tMin, tMax, &hit) {
		return false
	}
	rec.advance(&hit)
	return true
}

// Returns true if any primitive blocks the ray inside (tMin, tMax).
func (w *World) occluded(r Ray, tMin, tMax float32) bool {
	var hit SurfaceHit
	return w.closestHit(r, tMin, tMax, &hit)
}
