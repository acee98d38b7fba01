// Package encoding packs scene records into fixed-stride little-endian
// buffers consumed by compute kernels. Record i of a buffer starts at
// i*Stride; fields sit at the offsets declared below. Indices are not
// range checked.
package encoding

import (
	"encoding/binary"
	"math"

	"github.com/microsoft/morphcharts-sub000/types"
)

// Record strides in bytes.
const (
	PrimitiveStride = 192
	LightStride     = 144
	BvhNodeStride   = 32
	VertexStride    = 16
	UniformsStride  = 256
)

// Primitive record field offsets.
const (
	primCenter       = 0
	primKind         = 12
	primSize         = 16
	primRounding     = 28
	primRotation     = 32
	primParameters   = 48
	primMaterialType = 64
	primFuzz         = 68
	primGloss        = 72
	primDensity      = 76
	primColor        = 80
	primRefIndex     = 92
	primColor2       = 96
	primTextureType  = 108
	primTextureRect  = 112
	primTextureScale = 128
	primTextureOff   = 136
	primSegmentColor = 144
	primSdfBuffer    = 160
	primSdfHalo      = 164
	primId           = 168
)

// Light record field offsets.
const (
	lightColor        = 0
	lightKind         = 12
	lightCenter       = 16
	lightAngle        = 28
	lightDirection    = 32
	lightFalloff      = 44
	lightRotation     = 48
	lightSize         = 64
	lightNearPlane    = 76
	lightTextureType  = 80
	lightTextureScale = 88
	lightTextureOff   = 96
	lightColor2       = 104
)

// BVH node field offsets.
const (
	nodeCenter = 0
	nodeOffset = 12
	nodeSize   = 16
	nodeCount  = 28
	nodeAxis   = 30
)

// A view over a single record.
type record []byte

func (r record) putU32(off int, v uint32) {
	binary.LittleEndian.PutUint32(r[off:], v)
}

func (r record) putF32(off int, v float32) {
	binary.LittleEndian.PutUint32(r[off:], math.Float32bits(v))
}

func (r record) putVec2(off int, v types.Vec2) {
	r.putF32(off, v[0])
	r.putF32(off+4, v[1])
}

func (r record) putVec3(off int, v types.Vec3) {
	r.putF32(off, v[0])
	r.putF32(off+4, v[1])
	r.putF32(off+8, v[2])
}

func (r record) putVec4(off int, v types.Vec4) {
	r.putF32(off, v[0])
	r.putF32(off+4, v[1])
	r.putF32(off+8, v[2])
	r.putF32(off+12, v[3])
}

// Rotations are always stored as unit quaternions; a zero rotation is
// written as the identity.
func (r record) putQuat(off int, q types.Quat) {
	if q.V == (types.Vec3{}) && q.W == 0 {
		q = types.QuatIdent()
	}
	r.putVec4(off, q.XYZW())
}

func (r record) u32(off int) uint32 {
	return binary.LittleEndian.Uint32(r[off:])
}

func (r record) f32(off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(r[off:]))
}

func (r record) vec2(off int) types.Vec2 {
	return types.Vec2{r.f32(off), r.f32(off + 4)}
}

func (r record) vec3(off int) types.Vec3 {
	return types.Vec3{r.f32(off), r.f32(off + 4), r.f32(off + 8)}
}

func (r record) vec4(off int) types.Vec4 {
	return types.Vec4{r.f32(off), r.f32(off + 4), r.f32(off + 8), r.f32(off + 12)}
}

func (r record) quat(off int) types.Quat {
	v := r.vec4(off)
	return types.QuatXYZW(v[0], v[1], v[2], v[3])
}

// Get the record at index from a fixed-stride buffer.
func recordAt(buf []byte, index, stride int) record {
	return record(buf[index*stride : (index+1)*stride])
}
