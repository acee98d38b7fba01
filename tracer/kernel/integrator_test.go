package kernel

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/compiler"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/scene/encoding"
	"github.com/microsoft/morphcharts-sub000/types"
	"github.com/stretchr/testify/require"
)

func compileWorld(t *testing.T, world *scene.World) *World {
	t.Helper()
	sc, err := compiler.Compile(world, compiler.DefaultOptions())
	require.NoError(t, err)
	return NewWorld(sc)
}

func TestBeerLawAttenuation(t *testing.T) {
	thickness := float32(0.5)
	slab := scene.NewPrimitive(scene.BoxPrimitive, types.Vec3{}, types.Vec3{2, 2, thickness})
	slab.Material = scene.Material{
		Type:            scene.DielectricMaterial,
		RefractiveIndex: 1,
		Gloss:           0,
		Density:         2,
		Color:           types.Vec3{1, 0.5, 0.25},
	}

	w := compileWorld(t, &scene.World{
		Primitives: []scene.Primitive{slab},
		Ambient:    types.Vec3{1, 1, 1},
		Background: types.Vec4{0, 0, 0, 1},
	})

	var rng Rng
	rng.Seed(0, 0)
	got := w.radiance(NewRay(types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}), DefaultMaxDepth, &rng)

	absorption := slab.Material.Color.Mul(slab.Material.Density)
	expected := absorption.Mul(-thickness).Exp()
	for i := 0; i < 3; i++ {
		require.InDelta(t, expected[i], got[i], 1e-5, "channel %d", i)
	}
	require.Equal(t, float32(1), got[3])
}

func TestRadianceBackgroundAndEmission(t *testing.T) {
	light := scene.NewPrimitive(scene.SpherePrimitive, types.Vec3{}, types.Vec3{2, 2, 2})
	light.Material.Type = scene.DiffuseLightMaterial
	light.Material.Color = types.Vec3{4, 3, 2}

	w := compileWorld(t, &scene.World{
		Primitives: []scene.Primitive{light},
		Background: types.Vec4{0.1, 0.2, 0.3, 0},
		Ambient:    types.Vec3{1, 1, 1},
	})

	var rng Rng
	got := w.radiance(NewRay(types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}), DefaultMaxDepth, &rng)
	require.Equal(t, types.Vec4{4, 3, 2, 1}, got)

	// Camera rays that miss return the background including its alpha
	got = w.radiance(NewRay(types.Vec3{0, 0, 5}, types.Vec3{0, 0, 1}), DefaultMaxDepth, &rng)
	require.Equal(t, w.Background, got)
}

func TestMetalAbsorbsBelowSurface(t *testing.T) {
	mat := &scene.Material{Type: scene.MetalMaterial, Fuzz: 0}
	rec := &HitRecord{SurfaceHit: SurfaceHit{Normal: types.Vec3{0, 0, 1}, FrontFace: true}}

	var rng Rng
	r := NewRay(types.Vec3{0, 1, 1}, types.Vec3{0, -1, -1})
	scattered, _, ok := scatter(mat, r, rec, white, &rng)
	require.True(t, ok)
	require.InDelta(t, 0, scattered.Direction.Sub(types.Vec3{0, -1, 1}.Normalize()).Len(), 1e-5)

	// Grazing rays perturbed below the surface are absorbed
	mat.Fuzz = 1
	absorbed := 0
	r = NewRay(types.Vec3{0, 1, 0}, types.Vec3{0, -1, -1e-3})
	for i := 0; i < 64; i++ {
		rng.Seed(uint64(i), 0)
		if _, _, ok := scatter(mat, r, rec, white, &rng); !ok {
			absorbed++
		}
	}
	require.NotZero(t, absorbed)
}

func TestDielectricTotalInternalReflection(t *testing.T) {
	mat := &scene.Material{Type: scene.DielectricMaterial, RefractiveIndex: 1.5, Density: 1, Color: white}

	// Leaving the medium at a grazing angle
	rec := &HitRecord{
		SurfaceHit:  SurfaceHit{Normal: types.Vec3{0, 0, 1}, FrontFace: false},
		IsAbsorbing: true,
		Absorption:  white,
	}
	var rng Rng
	r := NewRay(types.Vec3{}, types.Vec3{1, 0, -0.2})
	scattered, _, ok := scatter(mat, r, rec, white, &rng)
	require.True(t, ok)
	require.Greater(t, scattered.Direction[2], float32(0), "expected reflected ray")
	require.True(t, rec.IsAbsorbing, "expected reflected ray to stay inside the medium")

	// Leaving the medium head on refracts and clears absorption
	r = NewRay(types.Vec3{}, types.Vec3{0, 0, -1})
	rec.Normal = types.Vec3{0, 0, 1}
	_, _, ok = scatter(mat, r, rec, white, &rng)
	require.True(t, ok)
	require.False(t, rec.IsAbsorbing)
}

func TestFlatColorDirectLighting(t *testing.T) {
	sphere := scene.NewPrimitive(scene.SpherePrimitive, types.Vec3{}, types.Vec3{2, 2, 2})
	sphere.Material.Color = types.Vec3{0.5, 0.5, 0.5}

	blocker := scene.NewPrimitive(scene.BoxPrimitive, types.Vec3{0, 0, 10}, types.Vec3{1, 1, 1})

	sun := scene.NewLight(scene.DirectionalLight, types.Vec3{1, 1, 1})
	sun.Direction = types.Vec3{0, 0, -1}

	w := compileWorld(t, &scene.World{
		Primitives: []scene.Primitive{sphere},
		Lights:     []scene.Light{sun},
	})
	got := w.flatColor(NewRay(types.Vec3{0, 0, 5}, types.Vec3{0, 0, -1}))
	for i := 0; i < 3; i++ {
		require.InDelta(t, 0.5, got[i], 1e-4)
	}

	// An occluder between the light and the surface casts a shadow
	w = compileWorld(t, &scene.World{
		Primitives: []scene.Primitive{sphere, blocker},
		Lights:     []scene.Light{sun},
		Ambient:    types.Vec3{0.2, 0.2, 0.2},
	})
	got = w.flatColor(NewRay(types.Vec3{0, 2, 5}, types.Vec3{0, -2, -4}))
	for i := 0; i < 3; i++ {
		require.InDelta(t, 0.1, got[i], 1e-4)
	}
}

func TestLightModulation(t *testing.T) {
	spot := scene.NewLight(scene.SpotLight, white)
	spot.Direction = types.Vec3{0, -1, 0}
	spot.Angle = math32.Pi / 4
	spot.Falloff = 0.5

	require.Equal(t, float32(1), spotFactor(&spot, types.Vec3{0, -1, 0}))
	require.Equal(t, float32(0), spotFactor(&spot, types.Vec3{1, 0, 0}))
	mid := spotFactor(&spot, types.Vec3{math32.Sin(0.2 * math32.Pi), -math32.Cos(0.2 * math32.Pi), 0})
	require.True(t, mid > 0 && mid < 1, "expected partial falloff; got %f", mid)

	projector := scene.NewLight(scene.ProjectorLight, types.Vec3{1, 0, 0})
	projector.Color2 = types.Vec3{0, 1, 0}
	projector.TextureType = scene.CheckerTexture
	projector.Angle = math32.Pi / 2
	projector.NearPlane = 0.5

	w := &World{}
	require.Equal(t, types.Vec3{}, w.projectorRadiance(&projector, types.Vec3{0, 0, -0.25}), "expected no light before the near plane")
	require.Equal(t, types.Vec3{}, w.projectorRadiance(&projector, types.Vec3{0, 0, 1}), "expected no light behind the projector")
	require.Equal(t, types.Vec3{}, w.projectorRadiance(&projector, types.Vec3{3, 0, -1}), "expected no light outside the aperture")
	require.NotEqual(t,
		w.projectorRadiance(&projector, types.Vec3{-0.75, 0.75, -1}),
		w.projectorRadiance(&projector, types.Vec3{0.25, 0.75, -1}),
		"expected neighboring checker cells to differ",
	)
}

func TestMissRadianceAreaLights(t *testing.T) {
	rect := scene.NewLight(scene.RectLight, types.Vec3{2, 2, 2})
	rect.Center = types.Vec3{0, 0, 5}
	rect.Size = types.Vec3{1, 1, 0}

	sphere := scene.NewLight(scene.SphereLight, types.Vec3{0, 0, 3})
	sphere.Center = types.Vec3{10, 0, 0}
	sphere.Size = types.Vec3{2, 2, 2}

	w := &World{Lights: []scene.Light{rect, sphere}, Ambient: types.Vec3{0.1, 0.1, 0.1}}

	// Rect lights emit towards -Z so rays travelling +Z see them
	got := w.missRadiance(NewRay(types.Vec3{}, types.Vec3{0, 0, 1}))
	require.InDelta(t, 2.1, got[0], 1e-5)

	got = w.missRadiance(NewRay(types.Vec3{0, 0, 10}, types.Vec3{0, 0, -1}))
	require.InDelta(t, 0.1, got[0], 1e-5)

	got = w.missRadiance(NewRay(types.Vec3{}, types.Vec3{1, 0, 0}))
	require.InDelta(t, 3.1, got[2], 1e-5)
}

func TestTextureColor(t *testing.T) {
	prim := scene.NewPrimitive(scene.BoxPrimitive, types.Vec3{}, types.Vec3{2, 4, 8})
	prim.Material.Color = types.Vec3{1, 0, 0}
	prim.Material.Color2 = types.Vec3{0, 1, 0}
	w := &World{}

	prim.Texture.Type = scene.CheckerTexture
	a := w.textureColor(&prim, &SurfaceHit{UV: types.Vec2{0.1, 0.1}})
	b := w.textureColor(&prim, &SurfaceHit{UV: types.Vec2{0.6, 0.1}})
	require.Equal(t, prim.Material.Color, a)
	require.Equal(t, prim.Material.Color2, b)

	prim.Texture.Type = scene.SdfTexture
	require.Equal(t, prim.Material.Color2, w.textureColor(&prim, &SurfaceHit{UV: types.Vec2{1, 0}}))
	require.Equal(t, prim.Material.Color, w.textureColor(&prim, &SurfaceHit{UV: types.Vec2{0, 0}}))

	prim.Texture.Type = scene.PositionTexture
	require.Equal(t, types.Vec3{1, 0.5, 0}, w.textureColor(&prim, &SurfaceHit{Local: types.Vec3{1, 0, -4}}))

	prim.Texture.Type = scene.UVTexture
	require.Equal(t, types.Vec3{0.25, 0.75, 0}, w.textureColor(&prim, &SurfaceHit{UV: types.Vec2{0.25, 0.75}}))
}

func TestEdgeDetection(t *testing.T) {
	// A 3x3 geometry buffer with a single distinct center entry
	gbuf := make([]float32, 9*GBufferStride)
	for index := 0; index < 9; index++ {
		entry := gbuf[index*GBufferStride:]
		copy(entry, []float32{1, 0, 0, 1, 0, 0, 1, 5})
	}
	require.Equal(t, float32(0), edgeAt(gbuf, 3, 1, 1))

	center := gbuf[4*GBufferStride:]
	center[7] = 5.1
	require.Equal(t, float32(0), edgeAt(gbuf, 3, 1, 1), "expected small depth change to be ignored")

	center[7] = 8
	require.Equal(t, float32(1), edgeAt(gbuf, 3, 1, 1))

	center[7] = 5
	center[6], center[5] = 0, 1
	require.Equal(t, float32(1), edgeAt(gbuf, 3, 1, 1))

	copy(center, []float32{0, 1, 0, 1, 0, 0, 1, 5})
	require.Equal(t, float32(1), edgeAt(gbuf, 3, 1, 1))

	center[7] = missDepth
	require.Equal(t, float32(1), edgeAt(gbuf, 3, 1, 1))
}

func TestResolvePixel(t *testing.T) {
	u := &encoding.FrameUniforms{RenderMode: scene.RaytraceMode, Exposure: 1}
	got := resolvePixel(u, types.Vec4{1, 0, 3, 1}, 0, 0)
	require.InDelta(t, math32.Pow(0.5, invGamma), got[0], 1e-6)
	require.Equal(t, float32(0), got[1])
	require.InDelta(t, math32.Pow(0.75, invGamma), got[2], 1e-6)

	u.RenderMode = scene.HDRMode
	u.Exposure = 2
	require.Equal(t, types.Vec4{2, 0, 6, 1}, resolvePixel(u, types.Vec4{1, 0, 3, 1}, 0, 0))

	u.RenderMode = scene.NormalMode
	require.Equal(t, float32(0.5), resolvePixel(u, types.Vec4{0, 0, 0, 3}, 2, 4)[3])
	require.Equal(t, float32(1), resolvePixel(u, types.Vec4{0, 0, 0, missDepth}, 2, 4)[3])

	u.RenderMode = scene.SegmentMode
	require.Equal(t, types.Vec4{0.1, 0.2, 0.3, 0.4}, resolvePixel(u, types.Vec4{0.1, 0.2, 0.3, 0.4}, 0, 0))
}
