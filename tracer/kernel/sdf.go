package kernel

import (
	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/texture"
	"github.com/microsoft/morphcharts-sub000/types"
)

const (
	// Sphere tracing iteration cap.
	MaxSdfSteps = 256

	// A march converges once the distance to the surface drops below this.
	SdfEpsilon float32 = 1e-6

	// Offset used by the tetrahedral normal estimate.
	sdfNormalOffset float32 = 1e-4
)

// Tetrahedron vertices used for gradient estimation.
var tetrahedron = [4]types.Vec3{{1, -1, -1}, {-1, -1, 1}, {-1, 1, -1}, {1, 1, 1}}

// Intersect a ray, given in the primitive local frame, with an SDF
// primitive using sphere tracing. Marching starts where the ray enters the
// primitive local bounds. A march that leaves the bounds or exhausts the
// iteration cap is a miss.
func hitSdf(p *scene.Primitive, lo, ld types.Vec3, tMin, tMax float32, atlas *texture.Texture, out *localHit) bool {
	lb := p.LocalBounds()
	half := lb.Max
	slabs := [3]slab{
		{boxSlabNormals[0], half[0]},
		{boxSlabNormals[1], half[1]},
		{boxSlabNormals[2], half[2]},
	}
	tNear, tFar, _, _, ok := intersectSlabs(slabs[:], lo, ld)
	if !ok {
		return false
	}
	t := math32.Max(tNear, tMin)
	tEnd := math32.Min(tFar, tMax)
	if t > tEnd {
		return false
	}

	// Convert distances along the field to parametric steps
	invDirLen := 1 / ld.Len()

	converged := false
	var pos types.Vec3
	for step := 0; step < MaxSdfSteps; step++ {
		pos = lo.Add(ld.Mul(t))
		d := math32.Abs(sdfDistance(p, pos))
		if d < SdfEpsilon {
			converged = true
			break
		}
		next := t + d*invDirLen
		if next == t {
			// No float32 precision left to advance along the ray
			converged = true
			break
		}
		t = next
		if t > tEnd {
			return false
		}
	}
	if !converged || t <= tMin || t >= tMax {
		return false
	}

	out.t = t
	out.position = pos
	out.normal = sdfNormal(p, pos)

	switch p.Kind {
	case scene.SdfGlyphPrimitive:
		return glyphCoverage(p, pos, atlas, out)
	case scene.SdfCylinderPrimitive, scene.SdfTubePrimitive, scene.SdfHexPrismPrimitive:
		out.uv = cylindricalUV(pos, 0.5*p.Size[1])
	case scene.SdfRoundedBoxPrimitive, scene.SdfBoxFramePrimitive:
		out.uv = planarUV(pos, out.normal, p.Size)
	default:
		out.uv = types.Vec2{}
	}
	return true
}

// Estimate the field gradient at pos by sampling the vertices of a
// tetrahedron around it.
func sdfNormal(p *scene.Primitive, pos types.Vec3) types.Vec3 {
	var n types.Vec3
	for _, k := range tetrahedron {
		n = n.Add(k.Mul(sdfDistance(p, pos.Add(k.Mul(sdfNormalOffset)))))
	}
	return n.Normalize()
}

// Sample the glyph atlas at a hit on the glyph quad. Hits whose distance
// value falls below the halo band are rejected. The first UV component
// flags hits inside the halo (stroke) band and the second carries the
// sampled distance value.
func glyphCoverage(p *scene.Primitive, pos types.Vec3, atlas *texture.Texture, out *localHit) bool {
	u := safeRatio(pos[0], p.Size[0]) + 0.5
	v := 0.5 - safeRatio(pos[1], p.Size[1])
	if atlas == nil {
		out.uv = types.Vec2{0, 1}
		return true
	}

	rect := p.Texture.CoordRect
	value := atlas.Sample(lerp(rect[0], rect[2], u), lerp(rect[1], rect[3], v))[0]

	edge := p.SdfBuffer
	if value < edge-p.SdfHalo {
		return false
	}

	var stroke float32
	if value < edge {
		stroke = 1
	}
	out.uv = types.Vec2{stroke, value}
	return true
}

// Evaluate the signed distance from a local position to the primitive
// surface.
func sdfDistance(p *scene.Primitive, pos types.Vec3) float32 {
	half := p.Size.Mul(0.5)
	switch p.Kind {
	case scene.SdfRoundedBoxPrimitive:
		return sdRoundBox(pos, half, p.Rounding)
	case scene.SdfBoxFramePrimitive:
		return sdBoxFrame(pos, half, 0.5*p.Parameters[0])
	case scene.SdfCappedTorusPrimitive:
		return sdCappedTorus(pos, half[0], p.Parameters[0], p.Parameters[1], p.Parameters[2])
	case scene.SdfCylinderPrimitive:
		return sdRoundedCylinder(pos, half[0], half[1], p.Rounding)
	case scene.SdfHexPrismPrimitive:
		return sdHexPrism(types.Vec3{pos[0], pos[2], pos[1]}, half[0]*cos30, half[1], p.Rounding)
	case scene.SdfQuadPrimitive, scene.SdfGlyphPrimitive:
		return sdRoundBox(pos, types.Vec3{half[0], half[1], half[2] + p.Rounding}, p.Rounding)
	case scene.SdfRingPrimitive:
		return sdRing(pos, half[0], p.Parameters[0], p.Parameters[1], p.Parameters[2], half[2])
	case scene.SdfTubePrimitive:
		return sdTube(pos, half[0], p.Parameters[0], half[1], p.Rounding)
	}
	return math32.MaxFloat32
}

func maxVec3(v types.Vec3, s float32) types.Vec3 {
	return types.Vec3{math32.Max(v[0], s), math32.Max(v[1], s), math32.Max(v[2], s)}
}

// Combine a 2D distance with an extrusion distance.
func opExtrude(d, h float32) float32 {
	w := types.Vec2{math32.Max(d, 0), math32.Max(h, 0)}
	return math32.Min(math32.Max(d, h), 0) + w.Len()
}

func sdRoundBox(p, b types.Vec3, r float32) float32 {
	q := p.Abs().Sub(b).Add(types.Splat3(r))
	return maxVec3(q, 0).Len() + math32.Min(q.MaxComponent(), 0) - r
}

func sdBoxFrame(p, b types.Vec3, e float32) float32 {
	p = p.Abs().Sub(b)
	q := p.Add(types.Splat3(e)).Abs().Sub(types.Splat3(e))

	edge := func(a types.Vec3) float32 {
		return maxVec3(a, 0).Len() + math32.Min(a.MaxComponent(), 0)
	}
	return math32.Min(
		math32.Min(
			edge(types.Vec3{p[0], q[1], q[2]}),
			edge(types.Vec3{q[0], p[1], q[2]}),
		),
		edge(types.Vec3{q[0], q[1], p[2]}),
	)
}

// Rotate a point in the XY plane so that the middle of the angular range
// [a0, a1] lies on +Y. Returns the rotated point and the half aperture.
// Equal angles select the full circle.
func alignSector(p types.Vec3, a0, a1 float32) (types.Vec3, float32) {
	if a0 == a1 {
		return p, math32.Pi
	}
	if a1 < a0 {
		a1 += 2 * math32.Pi
	}
	aperture := 0.5 * (a1 - a0)
	if aperture >= math32.Pi {
		return p, math32.Pi
	}
	sin, cos := math32.Sincos(0.5*math32.Pi - 0.5*(a0+a1))
	return types.Vec3{cos*p[0] - sin*p[1], sin*p[0] + cos*p[1], p[2]}, aperture
}

func sdCappedTorus(p types.Vec3, outer, ratio, a0, a1 float32) float32 {
	inner := outer * ratio
	ra := 0.5 * (outer + inner)
	rb := 0.5 * (outer - inner)

	p, an := alignSector(p, a0, a1)
	sc := types.Vec2{math32.Sin(an), math32.Cos(an)}
	p[0] = math32.Abs(p[0])

	// Distance to the nearest point of the tube center line, either the
	// sector end cap or the circle of radius ra.
	if sc[1]*p[0] > sc[0]*p[1] {
		return types.Vec3{p[0] - ra*sc[0], p[1] - ra*sc[1], p[2]}.Len() - rb
	}
	return types.Vec2{types.Vec2{p[0], p[1]}.Len() - ra, p[2]}.Len() - rb
}

// Distance to a circular sector of radius r with half aperture given by
// c = (sin, cos), centered on +Y.
func sdPie(p types.Vec2, c types.Vec2, r float32) float32 {
	p[0] = math32.Abs(p[0])
	l := p.Len() - r
	m := p.Sub(c.Mul(clamp(p.Dot(c), 0, r))).Len()
	return math32.Max(l, m*sign(c[1]*p[0]-c[0]*p[1]))
}

func sdRing(p types.Vec3, outer, ratio, a0, a1, halfDepth float32) float32 {
	inner := outer * ratio
	ra := 0.5 * (outer + inner)
	rb := 0.5 * (outer - inner)

	p, an := alignSector(p, a0, a1)
	xy := types.Vec2{p[0], p[1]}
	d := math32.Abs(xy.Len()-ra) - rb
	if an < math32.Pi {
		d = math32.Max(d, sdPie(xy, types.Vec2{math32.Sin(an), math32.Cos(an)}, outer))
	}
	return opExtrude(d, math32.Abs(p[2])-halfDepth)
}

func sdRoundedCylinder(p types.Vec3, radius, halfHeight, r float32) float32 {
	dx := types.Vec2{p[0], p[2]}.Len() - (radius - r)
	dy := math32.Abs(p[1]) - (halfHeight - r)
	return opExtrude(dx, dy) - r
}

func sdTube(p types.Vec3, outer, ratio, halfHeight, r float32) float32 {
	inner := outer * ratio
	ra := 0.5 * (outer + inner)
	rb := 0.5 * (outer - inner)
	d := math32.Abs(types.Vec2{p[0], p[2]}.Len()-ra) - rb
	return opExtrude(d+r, math32.Abs(p[1])-halfHeight+r) - r
}

// Hexagonal prism along Z whose flat sides face +/-Y at the given apothem.
func sdHexPrism(p types.Vec3, apothem, halfHeight, r float32) float32 {
	const kx, ky, kz float32 = -0.8660254, 0.5, 0.57735
	apothem -= r
	halfHeight -= r

	p = p.Abs()
	dot := math32.Min(kx*p[0]+ky*p[1], 0)
	p[0] -= 2 * dot * kx
	p[1] -= 2 * dot * ky

	edge := types.Vec2{p[0] - clamp(p[0], -kz*apothem, kz*apothem), p[1] - apothem}
	dx := edge.Len() * sign(p[1]-apothem)
	dy := p[2] - halfHeight
	return opExtrude(dx, dy) - r
}

func sign(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
