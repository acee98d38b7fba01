package kernel

import (
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/scene/encoding"
	"github.com/microsoft/morphcharts-sub000/asset/texture"
	"github.com/microsoft/morphcharts-sub000/tracer/device"
	"github.com/microsoft/morphcharts-sub000/types"
)

// The read-only scene state shared by all kernel invocations of a dispatch.
type World struct {
	// Primitives in BVH leaf order.
	Primitives []scene.Primitive
	Nodes      []scene.BvhNode
	Lights     []scene.Light

	Image *texture.Texture
	Atlas *texture.Texture

	Background types.Vec4
	Ambient    types.Vec3
}

// Create a kernel world from a compiled scene.
func NewWorld(sc *scene.Compiled) *World {
	w := &World{
		Primitives: sc.Primitives,
		Nodes:      sc.BvhNodes,
	}
	if sc.World != nil {
		w.Lights = sc.World.Lights
		w.Image = sc.World.Image
		w.Atlas = sc.World.Atlas
		w.Background = sc.World.Background
		w.Ambient = sc.World.Ambient
	}
	return w
}

func decodePrimitiveView(data []byte) interface{} { return encoding.DecodePrimitives(data) }
func decodeNodeView(data []byte) interface{}      { return encoding.DecodeBvhNodes(data) }
func decodeLightView(data []byte) interface{}     { return encoding.DecodeLights(data) }

// Wrap a float32 texture buffer. Textures with a single channel per texel
// are detected from the buffer size.
func textureView(buf *device.Buffer, width, height uint32) *texture.Texture {
	if buf == nil || width == 0 || height == 0 {
		return nil
	}
	data := buf.Float32s()
	texels := int(width * height)
	switch len(data) {
	case texels:
		return &texture.Texture{Format: texture.Luminance32F, Width: width, Height: height, Data: data}
	case 4 * texels:
		return &texture.Texture{Format: texture.Rgba32F, Width: width, Height: height, Data: data}
	}
	return nil
}

// Build a kernel world from encoded device buffers. Decoded records are
// cached by the buffers until their contents change. The light buffer may
// be empty.
func worldFromBuffers(u *encoding.FrameUniforms, prims, nodes, lights, image *device.Buffer, imageW, imageH uint32, atlas *device.Buffer, atlasW, atlasH uint32) *World {
	w := &World{
		Primitives: prims.View(decodePrimitiveView).([]scene.Primitive),
		Nodes:      nodes.View(decodeNodeView).([]scene.BvhNode),
		Image:      textureView(image, imageW, imageH),
		Atlas:      textureView(atlas, atlasW, atlasH),
		Background: u.Background,
		Ambient:    u.Ambient.Vec3(),
	}
	if lights != nil && lights.Size() > 0 {
		w.Lights = lights.View(decodeLightView).([]scene.Light)
	}

	// Encoded buffers may be padded beyond the live record counts
	if n := int(u.PrimitiveCount); n < len(w.Primitives) {
		w.Primitives = w.Primitives[:n]
	}
	if n := int(u.LightCount); n < len(w.Lights) {
		w.Lights = w.Lights[:n]
	}
	return w
}
