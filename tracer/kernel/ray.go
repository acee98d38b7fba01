package kernel

import (
	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/types"
)

const (
	// Minimum parametric distance accepted for secondary rays.
	RayEpsilon float32 = 1e-4

	// Replaces 1/0 in slab tests.
	invDirSentinel float32 = 1e30
)

// A ray with a normalized direction.
type Ray struct {
	Origin    types.Vec3
	Direction types.Vec3
}

// Create a ray; the direction is normalized.
func NewRay(origin, direction types.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// Get the point at parametric distance t.
func (r Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Geometric information about a ray/primitive intersection.
type SurfaceHit struct {
	Position types.Vec3

	// Surface normal facing against the incoming ray.
	Normal types.Vec3

	// Hit position in the primitive local frame.
	Local types.Vec3

	T  float32
	UV types.Vec2

	// True if the ray hit the outside of the surface.
	FrontFace bool

	// Index of the hit primitive in the ordered primitive list.
	Primitive int
}

// Per-path hit state. Besides the current surface hit it carries the
// absorption state set by the last scatter event and the state of the
// previous hit, needed for Beer's law integration inside dielectrics.
type HitRecord struct {
	SurfaceHit

	IsAbsorbing bool
	Absorption  types.Vec3

	PrevIsAbsorbing bool
	PrevAbsorption  types.Vec3
	PrevPosition    types.Vec3
}

// Replace the current surface hit, moving the current hit state into the
// previous hit fields.
func (rec *HitRecord) advance(hit *SurfaceHit) {
	rec.PrevPosition = rec.Position
	rec.PrevIsAbsorbing = rec.IsAbsorbing
	rec.PrevAbsorption = rec.Absorption
	rec.SurfaceHit = *hit
}

// Get the attenuation of light that traveled from the previous hit to the
// current one through an absorbing medium.
func (rec *HitRecord) transmittance() types.Vec3 {
	if !rec.PrevIsAbsorbing {
		return types.Vec3{1, 1, 1}
	}
	distance := rec.Position.Sub(rec.PrevPosition).Len()
	return rec.PrevAbsorption.Mul(-distance).Exp()
}

// Orient the outward normal against the ray direction.
func (h *SurfaceHit) setFaceNormal(dir, outward types.Vec3) {
	h.FrontFace = dir.Dot(outward) < 0
	if h.FrontFace {
		h.Normal = outward
	} else {
		h.Normal = outward.Neg()
	}
}

// Invert a ray direction component guarding against division by zero.
func safeInv(d float32) float32 {
	if math32.Abs(d) < 1e-20 {
		if math32.Signbit(d) {
			return -invDirSentinel
		}
		return invDirSentinel
	}
	return 1 / d
}
