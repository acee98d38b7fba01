package kernel

import (
	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/types"
)

// Evaluate the texture color of a primitive at a surface hit.
func (w *World) textureColor(p *scene.Primitive, hit *SurfaceHit) types.Vec3 {
	mat := &p.Material
	tex := &p.Texture
	switch tex.Type {
	case scene.CheckerTexture:
		if checkerParity(hit.UV, tex.Scale, tex.Offset) {
			return mat.Color
		}
		return mat.Color2
	case scene.ImageTexture:
		if w.Image == nil {
			return mat.Color
		}
		rect := tex.CoordRect
		return w.Image.Sample(lerp(rect[0], rect[2], hit.UV[0]), lerp(rect[1], rect[3], hit.UV[1])).Vec3()
	case scene.SdfTexture:
		// Glyph hits flag the stroke band in the first UV component
		if hit.UV[0] >= 0.5 {
			return mat.Color2
		}
		return mat.Color
	case scene.UVTexture:
		return types.Vec3{hit.UV[0], hit.UV[1], 0}
	case scene.PositionTexture:
		return types.Vec3{
			safeRatio(hit.Local[0], p.Size[0]) + 0.5,
			safeRatio(hit.Local[1], p.Size[1]) + 0.5,
			safeRatio(hit.Local[2], p.Size[2]) + 0.5,
		}
	}
	return mat.Color
}

// Returns true for the even cells of a 2x2 tiling checkerboard.
func checkerParity(uv, scale, offset types.Vec2) bool {
	u := uv[0]*scale[0] + offset[0]
	v := uv[1]*scale[1] + offset[1]
	cell := int(math32.Floor(2*u)) + int(math32.Floor(2*v))
	return cell&1 == 0
}
