package encoding

import (
	"github.com/microsoft/morphcharts-sub000/asset/scene"
)

// Encode a primitive list into a new buffer.
func EncodePrimitives(prims []scene.Primitive) []byte {
	buf := make([]byte, len(prims)*PrimitiveStride)
	for index := range prims {
		EncodePrimitive(buf, index, &prims[index])
	}
	return buf
}

// Encode a primitive into the record at index.
func EncodePrimitive(buf []byte, index int, p *scene.Primitive) {
	r := recordAt(buf, index, PrimitiveStride)
	r.putVec3(primCenter, p.Center)
	r.putU32(primKind, uint32(p.Kind))
	r.putVec3(primSize, p.Size)
	r.putF32(primRounding, p.Rounding)
	r.putQuat(primRotation, p.Rotation)
	for i, param := range p.Parameters {
		r.putF32(primParameters+4*i, param)
	}

	r.putU32(primMaterialType, uint32(p.Material.Type))
	r.putF32(primFuzz, p.Material.Fuzz)
	r.putF32(primGloss, p.Material.Gloss)
	r.putF32(primDensity, p.Material.Density)
	r.putVec3(primColor, p.Material.Color)
	r.putF32(primRefIndex, p.Material.RefractiveIndex)
	r.putVec3(primColor2, p.Material.Color2)

	r.putU32(primTextureType, uint32(p.Texture.Type))
	r.putVec4(primTextureRect, p.Texture.CoordRect)
	r.putVec2(primTextureScale, p.Texture.Scale)
	r.putVec2(primTextureOff, p.Texture.Offset)

	r.putVec4(primSegmentColor, p.SegmentColor)
	r.putF32(primSdfBuffer, p.SdfBuffer)
	r.putF32(primSdfHalo, p.SdfHalo)
	r.putU32(primId, p.Id)
}

// Get the number of primitive records in a buffer.
func PrimitiveCount(buf []byte) int {
	return len(buf) / PrimitiveStride
}

// Decode all primitive records in a buffer.
func DecodePrimitives(buf []byte) []scene.Primitive {
	prims := make([]scene.Primitive, PrimitiveCount(buf))
	for index := range prims {
		prims[index] = DecodePrimitive(buf, index)
	}
	return prims
}

// Decode the primitive record at index.
func DecodePrimitive(buf []byte, index int) scene.Primitive {
	r := recordAt(buf, index, PrimitiveStride)
	p := scene.Primitive{
		Kind:     scene.PrimitiveKind(r.u32(primKind)),
		Center:   r.vec3(primCenter),
		Size:     r.vec3(primSize),
		Rotation: r.quat(primRotation),
		Rounding: r.f32(primRounding),
		Material: scene.Material{
			Type:            scene.MaterialType(r.u32(primMaterialType)),
			Fuzz:            r.f32(primFuzz),
			Gloss:           r.f32(primGloss),
			Density:         r.f32(primDensity),
			RefractiveIndex: r.f32(primRefIndex),
			Color:           r.vec3(primColor),
			Color2:          r.vec3(primColor2),
		},
		Texture: scene.Texture{
			Type:      scene.TextureType(r.u32(primTextureType)),
			CoordRect: r.vec4(primTextureRect),
			Scale:     r.vec2(primTextureScale),
			Offset:    r.vec2(primTextureOff),
		},
		SegmentColor: r.vec4(primSegmentColor),
		SdfBuffer:    r.f32(primSdfBuffer),
		SdfHalo:      r.f32(primSdfHalo),
		Id:           r.u32(primId),
	}
	for i := range p.Parameters {
		p.Parameters[i] = r.f32(primParameters + 4*i)
	}
	return p
}
