package scene

import (
	"github.com/microsoft/morphcharts-sub000/asset/texture"
	"github.com/microsoft/morphcharts-sub000/types"
)

// The input to the scene compiler: the primitive and light lists supplied by
// the scene-graph layer plus global settings.
type World struct {
	Primitives []Primitive
	Lights     []Light

	// Color returned by camera rays that escape the scene.
	Background types.Vec4

	// Color returned by bounced rays that escape the scene.
	Ambient types.Vec3

	// Optional image sampled by image textures and projector lights.
	Image *texture.Texture

	// Optional SDF glyph atlas sampled by glyph primitives.
	Atlas *texture.Texture
}

// Calculate the bounds of all world primitives.
func (w *World) Bounds() Bounds {
	bounds := EmptyBounds()
	for index := range w.Primitives {
		bounds = bounds.Union(w.Primitives[index].Bounds())
	}
	return bounds
}
