package reader

import (
	"image"
	"image/color"
	"sort"

	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/texture"
	"github.com/microsoft/morphcharts-sub000/types"
)

var demos = map[string]func() *Scene{
	"spheres":     spheresDemo,
	"bars":        barsDemo,
	"sdf-gallery": sdfGalleryDemo,
}

// Build a built-in demo scene by name.
func Demo(name string) (*Scene, bool) {
	build, ok := demos[name]
	if !ok {
		return nil, false
	}
	return build(), true
}

// Get the sorted list of built-in demo scene names.
func DemoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func defaultCamera() *scene.Camera {
	cam := scene.NewCamera(45)
	cam.Position = types.Vec3{0, 2, 8}
	cam.LookAt = types.Vec3{0, 0.5, 0}
	cam.Update()
	return cam
}

func checkerFloor(y, size float32) scene.Primitive {
	floor := scene.NewPrimitive(scene.XZRectPrimitive, types.Vec3{0, y, 0}, types.Vec3{size, 0, size})
	floor.Texture = scene.Texture{Type: scene.CheckerTexture, Scale: types.Vec2{size / 2, size / 2}}
	floor.Material.Color = types.Vec3{0.8, 0.8, 0.8}
	floor.Material.Color2 = types.Vec3{0.3, 0.3, 0.3}
	floor.SegmentColor = types.Vec4{0.5, 0.5, 0.5, 1}
	return floor
}

func skyLight() scene.Light {
	sky := scene.NewLight(scene.HemisphereLight, types.Vec3{0.4, 0.5, 0.7})
	sky.Color2 = types.Vec3{0.15, 0.12, 0.1}
	sky.Direction = types.Vec3{0, 1, 0}
	return sky
}

func spheresDemo() *Scene {
	matte := scene.NewPrimitive(scene.SpherePrimitive, types.Vec3{0, 1, 0}, types.Vec3{2, 2, 2})
	matte.Material.Color = types.Vec3{0.7, 0.2, 0.2}
	matte.SegmentColor = types.Vec4{1, 0, 0, 1}

	metal := scene.NewPrimitive(scene.SpherePrimitive, types.Vec3{-2.2, 1, 0}, types.Vec3{2, 2, 2})
	metal.Material = scene.Material{Type: scene.MetalMaterial, Fuzz: 0.1, Color: types.Vec3{0.8, 0.6, 0.2}}
	metal.SegmentColor = types.Vec4{0, 1, 0, 1}

	glass := scene.NewPrimitive(scene.SpherePrimitive, types.Vec3{2.2, 1, 0}, types.Vec3{2, 2, 2})
	glass.Material = scene.Material{Type: scene.DielectricMaterial, Gloss: 1, RefractiveIndex: 1.5, Color: types.Vec3{1, 1, 1}}
	glass.SegmentColor = types.Vec4{0, 0, 1, 1}

	glossy := scene.NewPrimitive(scene.RotatedBoxPrimitive, types.Vec3{-1, 0.5, 2.2}, types.Vec3{1, 1, 1})
	glossy.Rotation = types.QuatFromAxisAngle(types.Vec3{0, 1, 0}, math32.Pi/5)
	glossy.Material = scene.Material{Type: scene.GlossyMaterial, Gloss: 1, RefractiveIndex: 1.5, Color: types.Vec3{0.2, 0.4, 0.8}}
	glossy.SegmentColor = types.Vec4{1, 1, 0, 1}

	pillar := scene.NewPrimitive(scene.CylinderPrimitive, types.Vec3{1.2, 0.4, 2.2}, types.Vec3{0.8, 0.8, 0.8})
	pillar.Material.Color = types.Vec3{0.3, 0.7, 0.3}
	pillar.SegmentColor = types.Vec4{0, 1, 1, 1}

	lamp := scene.NewPrimitive(scene.SpherePrimitive, types.Vec3{0, 0.25, 2.8}, types.Vec3{0.5, 0.5, 0.5})
	lamp.Material = scene.Material{Type: scene.DiffuseLightMaterial, Color: types.Vec3{4, 3.5, 3}}
	lamp.SegmentColor = types.Vec4{1, 0, 1, 1}

	key := scene.NewLight(scene.PointLight, types.Vec3{0.8, 0.8, 0.8})
	key.Center = types.Vec3{3, 6, 4}

	return &Scene{
		World: &scene.World{
			Primitives: []scene.Primitive{checkerFloor(0, 40), matte, metal, glass, glossy, pillar, lamp},
			Lights:     []scene.Light{key, skyLight()},
			Background: types.Vec4{0.6, 0.75, 1, 1},
			Ambient:    types.Vec3{0.6, 0.75, 1},
		},
		Camera: defaultCamera(),
	}
}

// A bar chart laid out on a grid with one segment color per bar.
func barsDemo() *Scene {
	const rows, cols = 6, 8
	palette := []types.Vec3{
		{0.12, 0.47, 0.71}, {1, 0.5, 0.05}, {0.17, 0.63, 0.17},
		{0.84, 0.15, 0.16}, {0.58, 0.4, 0.74}, {0.55, 0.34, 0.29},
	}

	prims := []scene.Primitive{checkerFloor(0, 30)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := float32(col) - float32(cols-1)/2
			z := float32(row) - float32(rows-1)/2
			height := 0.3 + 1.2*(1+math32.Sin(x*0.9)*math32.Cos(z*0.7))

			bar := scene.NewPrimitive(scene.BoxPrimitive, types.Vec3{0.8 * x, height / 2, 0.8 * z}, types.Vec3{0.6, height, 0.6})
			bar.Material.Color = palette[row%len(palette)]
			bar.Id = uint32(row*cols + col)
			bar.SegmentColor = types.Vec4{float32(col+1) / cols, float32(row+1) / rows, 0.5, 1}
			prims = append(prims, bar)
		}
	}

	sun := scene.NewLight(scene.DirectionalLight, types.Vec3{0.9, 0.85, 0.8})
	sun.Direction = types.Vec3{-0.4, -1, -0.6}.Normalize()

	cam := defaultCamera()
	cam.Position = types.Vec3{4, 6, 9}
	cam.LookAt = types.Vec3{0, 0.8, 0}
	cam.Update()

	return &Scene{
		World: &scene.World{
			Primitives: prims,
			Lights:     []scene.Light{sun, skyLight()},
			Background: types.Vec4{1, 1, 1, 1},
			Ambient:    types.Vec3{0.9, 0.9, 0.9},
		},
		Camera: cam,
	}
}

// One of each sphere traced primitive kind plus a glyph backed by a
// generated ring atlas.
func sdfGalleryDemo() *Scene {
	tilt := types.QuatFromAxisAngle(types.Vec3{1, 1, 0}, math32.Pi/6)

	frame := scene.NewPrimitive(scene.SdfBoxFramePrimitive, types.Vec3{-3, 2.6, 0}, types.Vec3{1.4, 1.4, 1.4})
	frame.Rotation = tilt
	frame.Parameters[0] = 0.1

	rounded := scene.NewPrimitive(scene.SdfRoundedBoxPrimitive, types.Vec3{-1, 2.6, 0}, types.Vec3{1.4, 1.2, 1.2})
	rounded.Rounding = 0.2

	torus := scene.NewPrimitive(scene.SdfCappedTorusPrimitive, types.Vec3{1, 2.6, 0}, types.Vec3{1.6, 1.6, 0})
	torus.Parameters = [4]float32{0.7, 0, 1.5 * math32.Pi}

	cylinder := scene.NewPrimitive(scene.SdfCylinderPrimitive, types.Vec3{3, 2.6, 0}, types.Vec3{1.2, 1.4, 1.2})
	cylinder.Rounding = 0.1

	hex := scene.NewPrimitive(scene.SdfHexPrismPrimitive, types.Vec3{-3, 0.8, 0}, types.Vec3{1.4, 1.2, 1.4})
	hex.Rotation = tilt

	quad := scene.NewPrimitive(scene.SdfQuadPrimitive, types.Vec3{-1, 0.8, 0}, types.Vec3{1.4, 1.4, 0})
	quad.Rounding = 0.05
	quad.Texture = scene.Texture{Type: scene.UVTexture, Scale: types.Vec2{1, 1}}

	ring := scene.NewPrimitive(scene.SdfRingPrimitive, types.Vec3{1, 0.8, 0}, types.Vec3{1.6, 1.6, 0.3})
	ring.Parameters = [4]float32{0.6, 0.25 * math32.Pi, 1.75 * math32.Pi}

	tube := scene.NewPrimitive(scene.SdfTubePrimitive, types.Vec3{3, 0.8, 0}, types.Vec3{1.2, 1.4, 1.2})
	tube.Parameters[0] = 0.7

	glyph := scene.NewPrimitive(scene.SdfGlyphPrimitive, types.Vec3{0, 4.2, 0}, types.Vec3{1.4, 1.4, 0})
	glyph.Texture = scene.Texture{Type: scene.SdfTexture, CoordRect: types.Vec4{0, 0, 1, 1}, Scale: types.Vec2{1, 1}}
	glyph.Material.Color = types.Vec3{0.9, 0.9, 0.9}
	glyph.Material.Color2 = types.Vec3{0.1, 0.1, 0.1}
	glyph.SdfBuffer = 0.5
	glyph.SdfHalo = 0.1

	prims := []scene.Primitive{frame, rounded, torus, cylinder, hex, quad, ring, tube, glyph}
	for index := range prims {
		hue := float32(index) / float32(len(prims))
		prims[index].SegmentColor = types.Vec4{hue, 1 - hue, 0.5, 1}
		if prims[index].Kind != scene.SdfGlyphPrimitive {
			prims[index].Material.Color = types.Vec3{0.3 + 0.6*hue, 0.5, 0.9 - 0.6*hue}
		}
	}
	prims = append(prims, checkerFloor(0, 30))

	key := scene.NewLight(scene.SpotLight, types.Vec3{1, 1, 1})
	key.Center = types.Vec3{0, 8, 6}
	key.Direction = types.Vec3{0, -8, -6}.Normalize()
	key.Angle = math32.Pi / 5
	key.Falloff = 0.2

	cam := defaultCamera()
	cam.Position = types.Vec3{0, 2.5, 10}
	cam.LookAt = types.Vec3{0, 2, 0}
	cam.Update()

	return &Scene{
		World: &scene.World{
			Primitives: prims,
			Lights:     []scene.Light{key, skyLight()},
			Background: types.Vec4{0.1, 0.1, 0.12, 1},
			Ambient:    types.Vec3{0.3, 0.3, 0.35},
			Atlas:      ringAtlas(64, 0.3, 0.1),
		},
		Camera: cam,
	}
}

// Generate a single glyph SDF atlas containing a ring. Distances are
// normalized so that 0.5 lies on the ring edge and spread (in atlas units)
// maps to a 0.5 change in value.
func ringAtlas(dim int, radius, spread float32) *texture.Texture {
	img := image.NewGray(image.Rect(0, 0, dim, dim))
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			u := (float32(x)+0.5)/float32(dim) - 0.5
			v := (float32(y)+0.5)/float32(dim) - 0.5
			dist := math32.Abs(math32.Sqrt(u*u+v*v)-radius) - 0.05
			value := 0.5 - 0.5*dist/spread
			img.SetGray(x, y, color.Gray{Y: uint8(255 * math32.Max(0, math32.Min(1, value)))})
		}
	}
	return texture.FromImage(img, texture.Luminance32F)
}
