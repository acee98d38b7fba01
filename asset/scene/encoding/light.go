package encoding

import (
	"github.com/microsoft/morphcharts-sub000/asset/scene"
)

// Encode a light list into a new buffer.
func EncodeLights(lights []scene.Light) []byte {
	buf := make([]byte, len(lights)*LightStride)
	for index := range lights {
		EncodeLight(buf, index, &lights[index])
	}
	return buf
}

// Encode a light into the record at index.
func EncodeLight(buf []byte, index int, l *scene.Light) {
	r := recordAt(buf, index, LightStride)
	r.putVec3(lightColor, l.Color)
	r.putU32(lightKind, uint32(l.Kind))
	r.putVec3(lightCenter, l.Center)
	r.putF32(lightAngle, l.Angle)
	r.putVec3(lightDirection, l.Direction)
	r.putF32(lightFalloff, l.Falloff)
	r.putQuat(lightRotation, l.Rotation)
	r.putVec3(lightSize, l.Size)
	r.putF32(lightNearPlane, l.NearPlane)
	r.putU32(lightTextureType, uint32(l.TextureType))
	r.putVec2(lightTextureScale, l.TextureScale)
	r.putVec2(lightTextureOff, l.TextureOffset)
	r.putVec3(lightColor2, l.Color2)
}

// Get the number of light records in a buffer.
func LightCount(buf []byte) int {
	return len(buf) / LightStride
}

// Decode all light records in a buffer.
func DecodeLights(buf []byte) []scene.Light {
	lights := make([]scene.Light, LightCount(buf))
	for index := range lights {
		lights[index] = DecodeLight(buf, index)
	}
	return lights
}

// Decode the light record at index.
func DecodeLight(buf []byte, index int) scene.Light {
	r := recordAt(buf, index, LightStride)
	return scene.Light{
		Kind:          scene.LightKind(r.u32(lightKind)),
		Color:         r.vec3(lightColor),
		Color2:        r.vec3(lightColor2),
		Center:        r.vec3(lightCenter),
		Direction:     r.vec3(lightDirection),
		Rotation:      r.quat(lightRotation),
		Size:          r.vec3(lightSize),
		Angle:         r.f32(lightAngle),
		Falloff:       r.f32(lightFalloff),
		NearPlane:     r.f32(lightNearPlane),
		TextureType:   scene.TextureType(r.u32(lightTextureType)),
		TextureScale:  r.vec2(lightTextureScale),
		TextureOffset: r.vec2(lightTextureOff),
	}
}
