package kernel

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/compiler"
	"github.com/microsoft/morphcharts-sub000/asset/compiler/bvh"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/texture"
	"github.com/microsoft/morphcharts-sub000/types"
	"github.com/stretchr/testify/require"
)

const testEpsilon = 1e-3

func approxVec3(t *testing.T, expected, actual types.Vec3, msg string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		if math32.Abs(expected[i]-actual[i]) > testEpsilon {
			t.Fatalf("expected %s to be %v; got %v", msg, expected, actual)
		}
	}
}

func TestSphereHit(t *testing.T) {
	prim := scene.NewPrimitive(scene.SpherePrimitive, types.Vec3{}, types.Vec3{2, 2, 2})
	r := NewRay(types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1})

	var hit SurfaceHit
	if !IntersectPrimitive(&prim, r, RayEpsilon, math32.MaxFloat32, nil, &hit) {
		t.Fatal("expected ray to hit the sphere")
	}
	if math32.Abs(hit.T-4) > 1e-5 {
		t.Fatalf("expected hit distance to be 4; got %f", hit.T)
	}
	approxVec3(t, types.Vec3{0, 0, 1}, hit.Position, "hit position")
	approxVec3(t, types.Vec3{0, 0, 1}, hit.Normal, "hit normal")
	if !hit.FrontFace {
		t.Fatal("expected a front face hit")
	}

	// A ray starting inside the sphere hits its far side from the back
	r = NewRay(types.Vec3{}, types.Vec3{0, 0, -1})
	if !IntersectPrimitive(&prim, r, RayEpsilon, math32.MaxFloat32, nil, &hit) {
		t.Fatal("expected ray to hit the sphere")
	}
	if hit.FrontFace {
		t.Fatal("expected a back face hit")
	}
	approxVec3(t, types.Vec3{0, 0, 1}, hit.Normal, "back face normal")
}

func TestAnalyticPrimitives(t *testing.T) {
	rotated := scene.NewPrimitive(scene.RotatedBoxPrimitive, types.Vec3{}, types.Vec3{2, 2, 2})
	rotated.Rotation = types.QuatFromAxisAngle(types.Vec3{0, 1, 0}, math32.Pi/4)

	// Box primitives ignore rotation
	aligned := scene.NewPrimitive(scene.BoxPrimitive, types.Vec3{}, types.Vec3{2, 2, 2})
	aligned.Rotation = rotated.Rotation

	specs := []struct {
		name   string
		prim   scene.Primitive
		origin types.Vec3
		dir    types.Vec3
		expT   float32
		expN   types.Vec3
	}{
		{"box", aligned, types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}, 4, types.Vec3{0, 0, 1}},
		{"rotated box", rotated, types.Vec3{0, 0.5, 5}, types.Vec3{0, 0, -1}, 5 - math32.Sqrt2, types.Vec3{}},
		{"cylinder side", scene.NewPrimitive(scene.CylinderPrimitive, types.Vec3{}, types.Vec3{2, 2, 2}), types.Vec3{5, 0, 0}, types.Vec3{-1, 0, 0}, 4, types.Vec3{1, 0, 0}},
		{"cylinder cap", scene.NewPrimitive(scene.CylinderPrimitive, types.Vec3{}, types.Vec3{2, 4, 2}), types.Vec3{0.2, 5, 0}, types.Vec3{0, -1, 0}, 3, types.Vec3{0, 1, 0}},
		{"xy rect", scene.NewPrimitive(scene.XYRectPrimitive, types.Vec3{0, 0, -1}, types.Vec3{2, 2, 0}), types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}, 6, types.Vec3{0, 0, 1}},
		{"xz rect", scene.NewPrimitive(scene.XZRectPrimitive, types.Vec3{}, types.Vec3{2, 0, 2}), types.Vec3{0, -3, 0}, types.Vec3{0, 1, 0}, 3, types.Vec3{0, -1, 0}},
		{"yz rect", scene.NewPrimitive(scene.YZRectPrimitive, types.Vec3{}, types.Vec3{0, 2, 2}), types.Vec3{2, 0, 0}, types.Vec3{-1, 0, 0}, 2, types.Vec3{1, 0, 0}},
		{"hex prism flat side", scene.NewPrimitive(scene.HexPrismPrimitive, types.Vec3{}, types.Vec3{2, 2, 2}), types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}, 5 - cos30, types.Vec3{0, 0, 1}},
		{"hex prism top", scene.NewPrimitive(scene.HexPrismPrimitive, types.Vec3{}, types.Vec3{2, 2, 2}), types.Vec3{0, 5, 0}, types.Vec3{0, -1, 0}, 4, types.Vec3{0, 1, 0}},
	}

	for _, spec := range specs {
		var hit SurfaceHit
		r := NewRay(spec.origin, spec.dir)
		if !IntersectPrimitive(&spec.prim, r, RayEpsilon, math32.MaxFloat32, nil, &hit) {
			t.Fatalf("[%s] expected ray to hit primitive", spec.name)
		}
		if math32.Abs(hit.T-spec.expT) > testEpsilon {
			t.Fatalf("[%s] expected hit distance to be %f; got %f", spec.name, spec.expT, hit.T)
		}
		if spec.expN != (types.Vec3{}) {
			approxVec3(t, spec.expN, hit.Normal, spec.name+" normal")
		}
	}
}

func TestMissedPrimitives(t *testing.T) {
	prims := []scene.Primitive{
		scene.NewPrimitive(scene.SpherePrimitive, types.Vec3{}, types.Vec3{2, 2, 2}),
		scene.NewPrimitive(scene.BoxPrimitive, types.Vec3{}, types.Vec3{2, 2, 2}),
		scene.NewPrimitive(scene.CylinderPrimitive, types.Vec3{}, types.Vec3{2, 2, 2}),
		scene.NewPrimitive(scene.HexPrismPrimitive, types.Vec3{}, types.Vec3{2, 2, 2}),
		scene.NewPrimitive(scene.SdfRoundedBoxPrimitive, types.Vec3{}, types.Vec3{2, 2, 2}),
	}

	// Parallel to the Z axis and outside every primitive
	r := NewRay(types.Vec3{3, 3, 5}, types.Vec3{0, 0, -1})
	for index := range prims {
		var hit SurfaceHit
		if IntersectPrimitive(&prims[index], r, RayEpsilon, math32.MaxFloat32, nil, &hit) {
			t.Fatalf("[%s] expected ray to miss", prims[index].Kind)
		}
	}

	// Hits behind tMax are ignored
	r = NewRay(types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1})
	var hit SurfaceHit
	if IntersectPrimitive(&prims[0], r, RayEpsilon, 3, nil, &hit) {
		t.Fatal("expected hit beyond tMax to be rejected")
	}
}

func TestSdfPrimitives(t *testing.T) {
	roundedBox := scene.NewPrimitive(scene.SdfRoundedBoxPrimitive, types.Vec3{}, types.Vec3{2, 2, 2})
	roundedBox.Rounding = 0.2

	torus := scene.NewPrimitive(scene.SdfCappedTorusPrimitive, types.Vec3{}, types.Vec3{2, 2, 0})
	torus.Parameters[0] = 0.5

	halfTorus := torus
	halfTorus.Parameters[1] = 0
	halfTorus.Parameters[2] = math32.Pi

	ring := scene.NewPrimitive(scene.SdfRingPrimitive, types.Vec3{}, types.Vec3{2, 2, 0.5})
	ring.Parameters[0] = 0.5

	tube := scene.NewPrimitive(scene.SdfTubePrimitive, types.Vec3{}, types.Vec3{2, 2, 2})
	tube.Parameters[0] = 0.5

	frame := scene.NewPrimitive(scene.SdfBoxFramePrimitive, types.Vec3{}, types.Vec3{2, 2, 2})
	frame.Parameters[0] = 0.2

	rotatedQuad := scene.NewPrimitive(scene.SdfQuadPrimitive, types.Vec3{}, types.Vec3{2, 2, 0})
	rotatedQuad.Rotation = types.QuatFromAxisAngle(types.Vec3{0, 1, 0}, math32.Pi/2)

	specs := []struct {
		name   string
		prim   scene.Primitive
		origin types.Vec3
		dir    types.Vec3
		expHit bool
		expT   float32
		expN   types.Vec3
	}{
		{"rounded box", roundedBox, types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}, true, 4, types.Vec3{0, 0, 1}},
		{"rounded box corner miss", roundedBox, types.Vec3{0.99, 0.99, 5}, types.Vec3{0, 0, -1}, false, 0, types.Vec3{}},
		{"sdf cylinder", scene.NewPrimitive(scene.SdfCylinderPrimitive, types.Vec3{}, types.Vec3{2, 2, 2}), types.Vec3{5, 0, 0}, types.Vec3{-1, 0, 0}, true, 4, types.Vec3{1, 0, 0}},
		{"sdf hex prism", scene.NewPrimitive(scene.SdfHexPrismPrimitive, types.Vec3{}, types.Vec3{2, 2, 2}), types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}, true, 5 - cos30, types.Vec3{0, 0, 1}},
		{"torus", torus, types.Vec3{0.75, 0, 5}, types.Vec3{0, 0, -1}, true, 4.75, types.Vec3{0, 0, 1}},
		{"torus hole", torus, types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}, false, 0, types.Vec3{}},
		{"capped torus kept half", halfTorus, types.Vec3{0, 0.75, 5}, types.Vec3{0, 0, -1}, true, 4.75, types.Vec3{0, 0, 1}},
		{"capped torus removed half", halfTorus, types.Vec3{0, -0.75, 5}, types.Vec3{0, 0, -1}, false, 0, types.Vec3{}},
		{"ring", ring, types.Vec3{0.75, 0, 5}, types.Vec3{0, 0, -1}, true, 4.75, types.Vec3{0, 0, 1}},
		{"tube wall", tube, types.Vec3{5, 0, 0}, types.Vec3{-1, 0, 0}, true, 4, types.Vec3{1, 0, 0}},
		{"tube bore", tube, types.Vec3{0, 5, 0}, types.Vec3{0, -1, 0}, false, 0, types.Vec3{}},
		{"box frame edge", frame, types.Vec3{0.95, 0.95, 5}, types.Vec3{0, 0, -1}, true, 4, types.Vec3{0, 0, 1}},
		{"box frame window", frame, types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}, false, 0, types.Vec3{}},
		{"rotated quad", rotatedQuad, types.Vec3{5, 0, 0}, types.Vec3{-1, 0, 0}, true, 5, types.Vec3{1, 0, 0}},
	}

	for _, spec := range specs {
		var hit SurfaceHit
		r := NewRay(spec.origin, spec.dir)
		got := IntersectPrimitive(&spec.prim, r, RayEpsilon, math32.MaxFloat32, nil, &hit)
		if got != spec.expHit {
			t.Fatalf("[%s] expected hit to be %t; got %t", spec.name, spec.expHit, got)
		}
		if !spec.expHit {
			continue
		}
		if math32.Abs(hit.T-spec.expT) > testEpsilon {
			t.Fatalf("[%s] expected hit distance to be %f; got %f", spec.name, spec.expT, hit.T)
		}
		approxVec3(t, spec.expN, hit.Normal, spec.name+" normal")
	}
}

func TestSdfMarchConverges(t *testing.T) {
	prim := scene.NewPrimitive(scene.SdfRoundedBoxPrimitive, types.Vec3{}, types.Vec3{2, 2, 2})
	prim.Rounding = 0.5

	// Every converged hit lies on the surface within the march epsilon
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		origin := types.Vec3{rng.Float32()*8 - 4, rng.Float32()*8 - 4, 6}
		target := types.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
		r := NewRay(origin, target.Sub(origin))

		var hit SurfaceHit
		if !IntersectPrimitive(&prim, r, RayEpsilon, math32.MaxFloat32, nil, &hit) {
			continue
		}
		d := sdfDistance(&prim, hit.Local)
		if math32.Abs(d) > 1e-4 {
			t.Fatalf("expected converged hit to lie on the surface; distance %g", d)
		}
		if l := hit.Normal.Len(); math32.Abs(l-1) > 1e-3 {
			t.Fatalf("expected unit normal; got length %f", l)
		}
	}
}

func TestCappedTorusNearSurface(t *testing.T) {
	torus := scene.NewPrimitive(scene.SdfCappedTorusPrimitive, types.Vec3{}, types.Vec3{2, 2, 0})
	torus.Parameters[0] = 0.5

	// Tube radius is 0.25 around a center line of radius 0.75
	for _, offset := range []float32{1e-4, 1e-5, -1e-5} {
		pos := types.Vec3{0.75, 0, 0.25 + offset}
		if d := sdfDistance(&torus, pos); math32.Abs(d-offset) > 1e-6 {
			t.Fatalf("expected distance at offset %g to be %g; got %g", offset, offset, d)
		}
	}

	// Normals on the tube crown of a full and a capped torus point along +Z
	halfTorus := torus
	halfTorus.Parameters[2] = math32.Pi
	approxVec3(t, types.Vec3{0, 0, 1}, sdfNormal(&torus, types.Vec3{0.75, 0, 0.25}), "torus crown normal")
	approxVec3(t, types.Vec3{0, 0, 1}, sdfNormal(&halfTorus, types.Vec3{0, 0.75, 0.25}), "capped torus crown normal")

	// Large primitives keep their precision
	big := torus
	big.Size = types.Vec3{200, 200, 0}
	if d := sdfDistance(&big, types.Vec3{75, 0, 25.01}); math32.Abs(d-0.01) > 1e-4 {
		t.Fatalf("expected distance to large torus to be 0.01; got %g", d)
	}
}

func TestGlyphCoverage(t *testing.T) {
	atlas := &texture.Texture{Format: texture.Luminance32F, Width: 1, Height: 1, Data: []float32{0}}
	glyph := scene.NewPrimitive(scene.SdfGlyphPrimitive, types.Vec3{}, types.Vec3{2, 2, 0})
	glyph.Texture.Type = scene.SdfTexture
	glyph.Texture.CoordRect = types.Vec4{0, 0, 1, 1}
	glyph.SdfBuffer = 0.5
	glyph.SdfHalo = 0.1

	specs := []struct {
		value     float32
		expHit    bool
		expStroke float32
	}{
		{0.3, false, 0},
		{0.45, true, 1},
		{0.8, true, 0},
	}

	r := NewRay(types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1})
	for _, spec := range specs {
		atlas.Data[0] = spec.value

		var hit SurfaceHit
		got := IntersectPrimitive(&glyph, r, RayEpsilon, math32.MaxFloat32, atlas, &hit)
		if got != spec.expHit {
			t.Fatalf("[value %f] expected hit to be %t; got %t", spec.value, spec.expHit, got)
		}
		if got && hit.UV[0] != spec.expStroke {
			t.Fatalf("[value %f] expected stroke flag to be %f; got %f", spec.value, spec.expStroke, hit.UV[0])
		}
	}
}

func randomPrimitive(rng *rand.Rand) scene.Primitive {
	kinds := []scene.PrimitiveKind{
		scene.SpherePrimitive, scene.BoxPrimitive, scene.RotatedBoxPrimitive,
		scene.CylinderPrimitive, scene.HexPrismPrimitive, scene.XYRectPrimitive,
		scene.SdfRoundedBoxPrimitive,
	}
	center := types.Vec3{rng.Float32()*20 - 10, rng.Float32()*20 - 10, rng.Float32()*20 - 10}
	size := types.Vec3{0.2 + rng.Float32()*2, 0.2 + rng.Float32()*2, 0.2 + rng.Float32()*2}
	prim := scene.NewPrimitive(kinds[rng.Intn(len(kinds))], center, size)
	if prim.Kind == scene.RotatedBoxPrimitive || prim.Kind == scene.CylinderPrimitive {
		axis := types.Vec3{rng.Float32(), rng.Float32(), rng.Float32() + 0.1}
		prim.Rotation = types.QuatFromAxisAngle(axis, rng.Float32()*math32.Pi)
	}
	return prim
}

func TestBvhTraversalMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	world := &scene.World{}
	for i := 0; i < 300; i++ {
		world.Primitives = append(world.Primitives, randomPrimitive(rng))
	}

	for _, strategy := range []bvh.SplitStrategy{bvh.SurfaceAreaHeuristic, bvh.EqualCounts} {
		opts := compiler.DefaultOptions()
		opts.SplitStrategy = strategy
		sc, err := compiler.Compile(world, opts)
		require.NoError(t, err)
		w := NewWorld(sc)

		hits := 0
		for i := 0; i < 2000; i++ {
			origin := types.Vec3{rng.Float32()*30 - 15, rng.Float32()*30 - 15, rng.Float32()*30 - 15}
			dir := types.Vec3{rng.Float32()*2 - 1, rng.Float32()*2 - 1, rng.Float32()*2 - 1}
			if dir.NearZero() {
				continue
			}
			r := NewRay(origin, dir)

			var bvhHit SurfaceHit
			gotBvh := w.closestHit(r, RayEpsilon, math32.MaxFloat32, &bvhHit)

			var bruteHit SurfaceHit
			gotBrute := false
			closest := float32(math32.MaxFloat32)
			for index := range w.Primitives {
				if IntersectPrimitive(&w.Primitives[index], r, RayEpsilon, closest, nil, &bruteHit) {
					bruteHit.Primitive = index
					closest = bruteHit.T
					gotBrute = true
				}
			}

			require.Equal(t, gotBrute, gotBvh, "ray %d (%s)", i, strategy)
			if !gotBrute {
				continue
			}
			hits++
			require.InDelta(t, bruteHit.T, bvhHit.T, 1e-4, "ray %d (%s)", i, strategy)
			require.Equal(t, bruteHit.Primitive, bvhHit.Primitive, "ray %d (%s)", i, strategy)
		}
		require.NotZero(t, hits)
	}
}

func TestRngDeterminism(t *testing.T) {
	var a, b Rng
	a.Seed(12, 3)
	b.Seed(12, 3)
	for i := 0; i < 16; i++ {
		va, vb := a.Float32(), b.Float32()
		if va != vb {
			t.Fatalf("expected identical streams; got %f and %f at %d", va, vb, i)
		}
		if va < 0 || va >= 1 {
			t.Fatalf("expected value in [0, 1); got %f", va)
		}
	}

	a.Seed(12, 3)
	b.Seed(12, 4)
	if a.Float32() == b.Float32() && a.Float32() == b.Float32() {
		t.Fatal("expected different sample indices to produce different streams")
	}

	for i := 0; i < 100; i++ {
		if l := a.UnitVector().Len(); math32.Abs(l-1) > 1e-4 {
			t.Fatalf("expected unit vector; got length %f", l)
		}
	}
}
