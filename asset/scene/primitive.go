package scene

import (
	"fmt"

	"github.com/microsoft/morphcharts-sub000/types"
)

type PrimitiveKind uint32

// Supported primitive kinds. The kind fully determines which primitive
// fields are meaningful; all other fields are left zeroed (or identity for
// the rotation).
const (
	// Analytic primitives.
	SpherePrimitive PrimitiveKind = iota
	BoxPrimitive
	RotatedBoxPrimitive
	CylinderPrimitive
	XYRectPrimitive
	XZRectPrimitive
	YZRectPrimitive
	HexPrismPrimitive

	// Sphere-traced signed distance field primitives.
	SdfBoxFramePrimitive
	SdfRoundedBoxPrimitive
	SdfCappedTorusPrimitive
	SdfCylinderPrimitive
	SdfHexPrismPrimitive
	SdfQuadPrimitive
	SdfRingPrimitive
	SdfTubePrimitive
	SdfGlyphPrimitive

	NumPrimitiveKinds
)

var primitiveKindNames = [NumPrimitiveKinds]string{
	"sphere", "box", "rotatedBox", "cylinder", "xyRect", "xzRect", "yzRect", "hexPrism",
	"sdfBoxFrame", "sdfRoundedBox", "sdfCappedTorus", "sdfCylinder", "sdfHexPrism",
	"sdfQuad", "sdfRing", "sdfTube", "sdfGlyph",
}

func (k PrimitiveKind) String() string {
	if k < NumPrimitiveKinds {
		return primitiveKindNames[k]
	}
	return fmt.Sprintf("primitiveKind(%d)", uint32(k))
}

// Returns true if intersections for this kind are computed via sphere tracing.
func (k PrimitiveKind) IsSdf() bool {
	return k >= SdfBoxFramePrimitive && k < NumPrimitiveKinds
}

// A scene primitive (hittable). All sizes describe the full outer extent of
// the primitive in its local frame:
//
//   - sphere: Size[0] is the diameter
//   - boxes, quads and glyphs: Size is width/height/depth
//   - cylinders, tubes and hex prisms: Size[0] is the diameter (circumradius
//     for hexagons) and Size[1] the height along the local Y axis
//   - rects: the two in-plane components are used
//   - capped torus and ring: Size[0] is the outer diameter in the local XY
//     plane; the ring is extruded along Z by Size[2]
//
// Kind-specific parameters:
//
//   - sdfBoxFrame: Parameters[0] is the frame edge thickness
//   - sdfCappedTorus, sdfRing: Parameters[0] is the inner/outer radius ratio,
//     Parameters[1] and Parameters[2] are the start/end angles in radians
//     measured counter-clockwise from +X
//   - sdfTube: Parameters[0] is the inner/outer radius ratio
type Primitive struct {
	Kind PrimitiveKind

	Center   types.Vec3
	Size     types.Vec3
	Rotation types.Quat
	Rounding float32

	Parameters [4]float32

	Material Material
	Texture  Texture

	// The color used when rendering segment/pick buffers.
	SegmentColor types.Vec4

	// SDF glyph settings. SdfBuffer is the atlas distance value at the
	// glyph edge and SdfHalo the width of the halo band below it.
	SdfBuffer float32
	SdfHalo   float32

	// An id supplied by the scene compiler; reported by pick buffers.
	Id uint32
}

// Create a primitive of the given kind with an identity rotation and a
// default lambertian material.
func NewPrimitive(kind PrimitiveKind, center, size types.Vec3) Primitive {
	return Primitive{
		Kind:     kind,
		Center:   center,
		Size:     size,
		Rotation: types.QuatIdent(),
		Material: Material{
			Type:            LambertianMaterial,
			Color:           types.Vec3{0.8, 0.8, 0.8},
			RefractiveIndex: 1.5,
		},
		Texture: Texture{
			Scale: types.Vec2{1, 1},
		},
	}
}

// Padding applied to the bounds of flat or sphere-traced primitives so that
// tracing always starts outside the surface.
const boundsPadding float32 = 1e-4

// Calculate the local-space half extents of the primitive.
func (p *Primitive) halfExtents() types.Vec3 {
	half := p.Size.Mul(0.5)
	switch p.Kind {
	case SpherePrimitive:
		return types.Splat3(half[0])
	case CylinderPrimitive, SdfCylinderPrimitive, SdfTubePrimitive, HexPrismPrimitive, SdfHexPrismPrimitive:
		return types.Vec3{half[0], half[1], half[0]}
	case XYRectPrimitive:
		return types.Vec3{half[0], half[1], boundsPadding}
	case XZRectPrimitive:
		return types.Vec3{half[0], boundsPadding, half[2]}
	case YZRectPrimitive:
		return types.Vec3{boundsPadding, half[1], half[2]}
	case SdfCappedTorusPrimitive:
		outer := half[0]
		tube := 0.5 * outer * (1 - p.Parameters[0])
		return types.Vec3{outer, outer, tube}
	case SdfRingPrimitive:
		return types.Vec3{half[0], half[0], half[2]}
	case SdfQuadPrimitive, SdfGlyphPrimitive:
		return types.Vec3{half[0], half[1], half[2] + p.Rounding}
	}
	return half
}

// Returns true if the primitive local frame is rotated. Axis aligned boxes
// ignore their rotation.
func (p *Primitive) IsRotated() bool {
	return p.Kind != BoxPrimitive && !p.Rotation.IsIdent()
}

// Calculate the bounding box of the primitive in its local (unrotated,
// centered) frame.
func (p *Primitive) LocalBounds() Bounds {
	half := p.halfExtents()
	if p.Kind.IsSdf() {
		half = half.Add(types.Splat3(boundsPadding))
	}
	return Bounds{Min: half.Neg(), Max: half}
}

// Calculate the world-space axis aligned bounding box of the primitive.
func (p *Primitive) Bounds() Bounds {
	half := p.LocalBounds().Max

	if !p.IsRotated() {
		return Bounds{Min: p.Center.Sub(half), Max: p.Center.Add(half)}
	}

	bounds := EmptyBounds()
	for corner := 0; corner < 8; corner++ {
		local := half
		if corner&1 != 0 {
			local[0] = -local[0]
		}
		if corner&2 != 0 {
			local[1] = -local[1]
		}
		if corner&4 != 0 {
			local[2] = -local[2]
		}
		bounds = bounds.Extend(p.Center.Add(p.Rotation.Rotate(local)))
	}
	return bounds
}
