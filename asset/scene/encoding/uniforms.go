package encoding

import (
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/types"
)

// Frame uniform flags.
const (
	// Dispatch covers a one pixel border around the tile so that edge
	// detection can sample neighbors.
	FlagOverdispatch uint32 = 1 << iota
)

// Per-frame parameters shared by all kernel invocations.
type FrameUniforms struct {
	Eye     types.Vec3
	Frustum scene.Frustum

	// Tile dimensions.
	Width  uint32
	Height uint32

	// Samples accumulated so far and samples to add in this dispatch.
	FrameCount uint32
	Samples    uint32

	RenderMode  scene.RenderMode
	TilesX      uint32
	TilesY      uint32
	TileOffsetX uint32
	TileOffsetY uint32
	Multisample uint32
	MaxDepth    uint32

	PrimitiveCount uint32
	LightCount     uint32

	Background types.Vec4
	Ambient    types.Vec4
	Exposure   float32
	Flags      uint32
}

// Encode uniforms into a new buffer.
func EncodeUniforms(u *FrameUniforms) []byte {
	buf := make([]byte, UniformsStride)
	r := record(buf)
	r.putVec3(0, u.Eye)
	r.putU32(12, u.Width)
	for i, corner := range u.Frustum {
		r.putVec4(16+16*i, corner)
	}
	r.putU32(80, u.Height)
	r.putU32(84, u.FrameCount)
	r.putU32(88, u.Samples)
	r.putU32(92, uint32(u.RenderMode))
	r.putU32(96, u.TilesX)
	r.putU32(100, u.TilesY)
	r.putU32(104, u.TileOffsetX)
	r.putU32(108, u.TileOffsetY)
	r.putU32(112, u.Multisample)
	r.putU32(116, u.MaxDepth)
	r.putU32(120, u.PrimitiveCount)
	r.putU32(124, u.LightCount)
	r.putVec4(128, u.Background)
	r.putVec4(144, u.Ambient)
	r.putF32(160, u.Exposure)
	r.putU32(164, u.Flags)
	return buf
}

// Decode uniforms from a buffer.
func DecodeUniforms(buf []byte) FrameUniforms {
	r := record(buf[:UniformsStride])
	u := FrameUniforms{
		Eye:            r.vec3(0),
		Width:          r.u32(12),
		Height:         r.u32(80),
		FrameCount:     r.u32(84),
		Samples:        r.u32(88),
		RenderMode:     scene.RenderMode(r.u32(92)),
		TilesX:         r.u32(96),
		TilesY:         r.u32(100),
		TileOffsetX:    r.u32(104),
		TileOffsetY:    r.u32(108),
		Multisample:    r.u32(112),
		MaxDepth:       r.u32(116),
		PrimitiveCount: r.u32(120),
		LightCount:     r.u32(124),
		Background:     r.vec4(128),
		Ambient:        r.vec4(144),
		Exposure:       r.f32(160),
		Flags:          r.u32(164),
	}
	for i := range u.Frustum {
		u.Frustum[i] = r.vec4(16 + 16*i)
	}
	return u
}
