package kernel

import (
	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/texture"
	"github.com/microsoft/morphcharts-sub000/types"
)

const (
	cos30 float32 = 0.8660254
	sin30 float32 = 0.5
)

// An intersection expressed in the primitive local frame.
type localHit struct {
	t        float32
	position types.Vec3
	normal   types.Vec3
	uv       types.Vec2
}

// A pair of parallel planes at +/- extent along normal.
type slab struct {
	normal types.Vec3
	extent float32
}

var (
	boxSlabNormals = [3]types.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	// Hexagon face normals in the local XZ plane; vertices lie at multiples
	// of 60 degrees starting at +X.
	hexSlabNormals = [3]types.Vec3{{cos30, 0, sin30}, {0, 0, 1}, {-cos30, 0, sin30}}
)

// Intersect a ray with a primitive. The ray is transformed into the
// primitive local frame using the inverse rotation and the hit is
// transformed back. Returns false if there is no hit in (tMin, tMax).
func IntersectPrimitive(p *scene.Primitive, r Ray, tMin, tMax float32, atlas *texture.Texture, hit *SurfaceHit) bool {
	lo := r.Origin.Sub(p.Center)
	ld := r.Direction
	rotated := p.IsRotated()
	if rotated {
		lo = p.Rotation.InverseRotate(lo)
		ld = p.Rotation.InverseRotate(ld)
	}

	var local localHit
	var ok bool
	switch p.Kind {
	case scene.SpherePrimitive:
		ok = hitSphere(0.5*p.Size[0], lo, ld, tMin, tMax, &local)
	case scene.BoxPrimitive, scene.RotatedBoxPrimitive:
		ok = hitBox(p.Size, lo, ld, tMin, tMax, &local)
	case scene.CylinderPrimitive:
		ok = hitCylinder(0.5*p.Size[0], 0.5*p.Size[1], lo, ld, tMin, tMax, &local)
	case scene.XYRectPrimitive:
		ok = hitRect(2, 0, 1, p.Size, lo, ld, tMin, tMax, &local)
	case scene.XZRectPrimitive:
		ok = hitRect(1, 0, 2, p.Size, lo, ld, tMin, tMax, &local)
	case scene.YZRectPrimitive:
		ok = hitRect(0, 2, 1, p.Size, lo, ld, tMin, tMax, &local)
	case scene.HexPrismPrimitive:
		ok = hitHexPrism(0.5*p.Size[0], 0.5*p.Size[1], lo, ld, tMin, tMax, &local)
	default:
		if p.Kind.IsSdf() {
			ok = hitSdf(p, lo, ld, tMin, tMax, atlas, &local)
		}
	}
	if !ok {
		return false
	}

	outward := local.normal
	position := local.position
	if rotated {
		outward = p.Rotation.Rotate(outward)
		position = p.Rotation.Rotate(position)
	}

	hit.T = local.t
	hit.Local = local.position
	hit.UV = local.uv
	hit.Position = p.Center.Add(position)
	hit.setFaceNormal(r.Direction, outward)
	return true
}

// Intersect a sphere centered at the origin. The hit position is derived
// from the normal so it lies exactly on the surface.
func hitSphere(radius float32, lo, ld types.Vec3, tMin, tMax float32, out *localHit) bool {
	a := ld.Dot(ld)
	halfB := lo.Dot(ld)
	c := lo.Dot(lo) - radius*radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return false
	}

	sq := math32.Sqrt(disc)
	root := (-halfB - sq) / a
	if root <= tMin || root >= tMax {
		root = (-halfB + sq) / a
		if root <= tMin || root >= tMax {
			return false
		}
	}

	n := lo.Add(ld.Mul(root)).Normalize()
	out.t = root
	out.normal = n
	out.position = n.Mul(radius)
	out.uv = sphereUV(n)
	return true
}

func sphereUV(n types.Vec3) types.Vec2 {
	return types.Vec2{
		(math32.Atan2(-n[2], n[0]) + math32.Pi) / (2 * math32.Pi),
		math32.Acos(clamp(-n[1], -1, 1)) / math32.Pi,
	}
}

// Intersect the ray with the intersection of a set of slabs (a convex
// polytope). Returns the entry/exit distances and the outward normals of the
// entry/exit faces.
func intersectSlabs(slabs []slab, lo, ld types.Vec3) (tNear, tFar float32, nNear, nFar types.Vec3, ok bool) {
	tNear = -math32.MaxFloat32
	tFar = math32.MaxFloat32
	for _, s := range slabs {
		inv := safeInv(s.normal.Dot(ld))
		on := s.normal.Dot(lo)
		t0 := (-s.extent - on) * inv
		t1 := (s.extent - on) * inv
		n0, n1 := s.normal.Neg(), s.normal
		if t0 > t1 {
			t0, t1 = t1, t0
			n0, n1 = n1, n0
		}
		if t0 > tNear {
			tNear, nNear = t0, n0
		}
		if t1 < tFar {
			tFar, nFar = t1, n1
		}
		if tNear > tFar {
			return 0, 0, nNear, nFar, false
		}
	}
	return tNear, tFar, nNear, nFar, true
}

// Pick the nearest slab crossing inside (tMin, tMax); rays starting inside
// the polytope hit its exit face.
func nearestSlabHit(tNear, tFar float32, nNear, nFar types.Vec3, tMin, tMax float32) (float32, types.Vec3, bool) {
	if tNear > tMin && tNear < tMax {
		return tNear, nNear, true
	}
	if tFar > tMin && tFar < tMax {
		return tFar, nFar, true
	}
	return 0, types.Vec3{}, false
}

// Intersect an axis aligned box of the given size centered at the origin.
func hitBox(size, lo, ld types.Vec3, tMin, tMax float32, out *localHit) bool {
	half := size.Mul(0.5)
	slabs := [3]slab{
		{boxSlabNormals[0], half[0]},
		{boxSlabNormals[1], half[1]},
		{boxSlabNormals[2], half[2]},
	}
	tNear, tFar, nNear, nFar, ok := intersectSlabs(slabs[:], lo, ld)
	if !ok {
		return false
	}
	t, n, ok := nearestSlabHit(tNear, tFar, nNear, nFar, tMin, tMax)
	if !ok {
		return false
	}

	out.t = t
	out.normal = n
	out.position = lo.Add(ld.Mul(t))
	out.uv = planarUV(out.position, n, size)
	return true
}

// Project a box surface point onto the face selected by the normal.
func planarUV(p, n, size types.Vec3) types.Vec2 {
	var a1, a2 int
	switch n.Abs().MaxAxis() {
	case 0:
		a1, a2 = 2, 1
	case 1:
		a1, a2 = 0, 2
	default:
		a1, a2 = 0, 1
	}
	return types.Vec2{safeRatio(p[a1], size[a1]) + 0.5, safeRatio(p[a2], size[a2]) + 0.5}
}

// Intersect a capped cylinder along the local Y axis.
func hitCylinder(radius, halfHeight float32, lo, ld types.Vec3, tMin, tMax float32, out *localHit) bool {
	best := tMax
	found := false

	// Side
	a := ld[0]*ld[0] + ld[2]*ld[2]
	if a > 1e-12 {
		b := lo[0]*ld[0] + lo[2]*ld[2]
		c := lo[0]*lo[0] + lo[2]*lo[2] - radius*radius
		disc := b*b - a*c
		if disc >= 0 {
			sq := math32.Sqrt(disc)
			for _, root := range [2]float32{(-b - sq) / a, (-b + sq) / a} {
				if root <= tMin || root >= best {
					continue
				}
				p := lo.Add(ld.Mul(root))
				if math32.Abs(p[1]) > halfHeight {
					continue
				}
				n := types.Vec3{p[0], 0, p[2]}.Normalize()
				best, found = root, true
				out.t = root
				out.normal = n
				out.position = types.Vec3{n[0] * radius, p[1], n[2] * radius}
				out.uv = cylindricalUV(out.position, halfHeight)
				break
			}
		}
	}

	// Caps
	if math32.Abs(ld[1]) > 1e-12 {
		for _, capY := range [2]float32{-halfHeight, halfHeight} {
			t := (capY - lo[1]) / ld[1]
			if t <= tMin || t >= best {
				continue
			}
			p := lo.Add(ld.Mul(t))
			if p[0]*p[0]+p[2]*p[2] > radius*radius {
				continue
			}
			best, found = t, true
			out.t = t
			out.normal = types.Vec3{0, math32.Copysign(1, capY), 0}
			out.position = types.Vec3{p[0], capY, p[2]}
			out.uv = types.Vec2{safeRatio(p[0], 2*radius) + 0.5, safeRatio(p[2], 2*radius) + 0.5}
		}
	}

	return found
}

// Unwrap a point around the local Y axis.
func cylindricalUV(p types.Vec3, halfHeight float32) types.Vec2 {
	return types.Vec2{
		(math32.Atan2(-p[2], p[0]) + math32.Pi) / (2 * math32.Pi),
		safeRatio(p[1]+halfHeight, 2*halfHeight),
	}
}

// Intersect an axis aligned rect lying in the plane normal to axis n whose
// extent is given by the u/v axes of size.
func hitRect(n, u, v int, size, lo, ld types.Vec3, tMin, tMax float32, out *localHit) bool {
	if math32.Abs(ld[n]) < 1e-12 {
		return false
	}
	t := -lo[n] / ld[n]
	if t <= tMin || t >= tMax {
		return false
	}

	p := lo.Add(ld.Mul(t))
	if math32.Abs(p[u]) > 0.5*size[u] || math32.Abs(p[v]) > 0.5*size[v] {
		return false
	}

	p[n] = 0
	out.t = t
	out.position = p
	out.normal = types.Vec3{}
	out.normal[n] = 1
	out.uv = types.Vec2{safeRatio(p[u], size[u]) + 0.5, safeRatio(p[v], size[v]) + 0.5}
	return true
}

// Intersect a hexagonal prism along the local Y axis with the given
// circumradius.
func hitHexPrism(radius, halfHeight float32, lo, ld types.Vec3, tMin, tMax float32, out *localHit) bool {
	apothem := radius * cos30
	slabs := [4]slab{
		{hexSlabNormals[0], apothem},
		{hexSlabNormals[1], apothem},
		{hexSlabNormals[2], apothem},
		{boxSlabNormals[1], halfHeight},
	}
	tNear, tFar, nNear, nFar, ok := intersectSlabs(slabs[:], lo, ld)
	if !ok {
		return false
	}
	t, n, ok := nearestSlabHit(tNear, tFar, nNear, nFar, tMin, tMax)
	if !ok {
		return false
	}

	out.t = t
	out.normal = n
	out.position = lo.Add(ld.Mul(t))
	out.uv = cylindricalUV(out.position, halfHeight)
	return true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Divide guarding against zero denominators.
func safeRatio(num, den float32) float32 {
	if den == 0 {
		return 0
	}
	return num / den
}
