package kernel

import (
	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/scene/encoding"
	"github.com/microsoft/morphcharts-sub000/types"
)

// Default number of path bounces.
const DefaultMaxDepth = 8

// Maps tile pixels to camera rays. With tiling, pixel (x, y) of tile
// (tx, ty) is pixel (tx*w + x, ty*h + y) of the full image.
type camera struct {
	eye     types.Vec3
	frustum scene.Frustum

	fullW, fullH     int
	originX, originY int
}

func newCamera(u *encoding.FrameUniforms) camera {
	tilesX := int(maxU32(u.TilesX, 1))
	tilesY := int(maxU32(u.TilesY, 1))
	return camera{
		eye:     u.Eye,
		frustum: u.Frustum,
		fullW:   tilesX * int(u.Width),
		fullH:   tilesY * int(u.Height),
		originX: int(u.TileOffsetX) * int(u.Width),
		originY: int(u.TileOffsetY) * int(u.Height),
	}
}

// Get the index of a tile pixel in the full image; used to key the RNG.
func (c *camera) pixelIndex(x, y int) uint64 {
	return uint64(int64(c.originY+y)*int64(c.fullW) + int64(c.originX+x))
}

// Get the ray through a sub-pixel position (x+jx, y+jy) of the tile.
func (c *camera) ray(x, y int, jx, jy float32) Ray {
	u := (float32(c.originX+x) + jx) / float32(c.fullW)
	v := (float32(c.originY+y) + jy) / float32(c.fullH)
	return NewRay(c.eye, c.frustum.Ray(u, v))
}

// Integrate the radiance along a camera path of at most maxDepth bounces.
// Camera rays that miss return the background color. Bounced rays that
// escape the scene gather the ambient color and any area light in their
// path. The alpha channel is 1 if the camera ray hit the scene.
func (w *World) radiance(r Ray, maxDepth int, rng *Rng) types.Vec4 {
	var rec HitRecord
	rec.Position = r.Origin

	throughput := white
	var radiance types.Vec3
	for depth := 0; depth < maxDepth; depth++ {
		if !w.Hit(r, RayEpsilon, math32.MaxFloat32, &rec) {
			if depth == 0 {
				return w.Background
			}
			radiance = radiance.Add(throughput.MulVec(w.missRadiance(r)))
			break
		}

		throughput = throughput.MulVec(rec.transmittance())

		prim := &w.Primitives[rec.Primitive]
		albedo := w.textureColor(prim, &rec.SurfaceHit)
		mat := &prim.Material
		if mat.Type == scene.DiffuseLightMaterial {
			radiance = radiance.Add(throughput.MulVec(albedo))
			break
		}

		if mat.Type == scene.LambertianMaterial || mat.Type == scene.GlossyMaterial {
			direct := w.directLight(&rec.SurfaceHit, r.Direction.Neg())
			radiance = radiance.Add(throughput.MulVec(albedo).MulVec(direct.diffuse))
		}

		scattered, attenuation, ok := scatter(mat, r, &rec, albedo, rng)
		if !ok {
			break
		}
		throughput = throughput.MulVec(attenuation)
		r = scattered
	}
	return radiance.Vec4(1)
}

// Shade a camera ray with direct lighting only: the texture color lit by
// the ambient color and all non area lights plus a gloss weighted
// specular highlight.
func (w *World) flatColor(r Ray) types.Vec4 {
	var rec HitRecord
	if !w.Hit(r, RayEpsilon, math32.MaxFloat32, &rec) {
		return w.Background
	}

	prim := &w.Primitives[rec.Primitive]
	albedo := w.textureColor(prim, &rec.SurfaceHit)
	if prim.Material.Type == scene.DiffuseLightMaterial {
		return albedo.Vec4(1)
	}

	direct := w.directLight(&rec.SurfaceHit, r.Direction.Neg())
	color := albedo.MulVec(w.Ambient.Add(direct.diffuse)).Add(direct.specular.Mul(prim.Material.Gloss))
	return color.Vec4(1)
}

// Average flat shading over a multisample x multisample grid of sub-pixel
// positions.
func (w *World) multisampledColor(c *camera, x, y, multisample int) types.Vec4 {
	if multisample < 1 {
		multisample = 1
	}
	var sum types.Vec4
	step := 1 / float32(multisample)
	for sy := 0; sy < multisample; sy++ {
		for sx := 0; sx < multisample; sx++ {
			r := c.ray(x, y, (float32(sx)+0.5)*step, (float32(sy)+0.5)*step)
			sum = sum.Add(w.flatColor(r))
		}
	}
	return sum.Mul(step * step)
}

func maxU32(v, lo uint32) uint32 {
	if v < lo {
		return lo
	}
	return v
}
