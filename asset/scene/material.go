package scene

import "github.com/microsoft/morphcharts-sub000/types"

type MaterialType uint32

const (
	LambertianMaterial MaterialType = iota
	MetalMaterial
	DielectricMaterial
	GlossyMaterial
	DiffuseLightMaterial
)

func (t MaterialType) String() string {
	switch t {
	case LambertianMaterial:
		return "lambertian"
	case MetalMaterial:
		return "metal"
	case DielectricMaterial:
		return "dielectric"
	case GlossyMaterial:
		return "glossy"
	case DiffuseLightMaterial:
		return "diffuseLight"
	}
	return "unknown"
}

// Surface material. Colors are not clamped to [0, 1] so emissive and HDR
// values survive encoding.
type Material struct {
	Type MaterialType

	// Metal/glossy perturbation radius.
	Fuzz float32

	// Scales the Schlick reflectance of dielectric and glossy surfaces.
	Gloss float32

	// Dielectric absorption density (Beer's law).
	Density float32

	RefractiveIndex float32

	// Primary and secondary colors. Textures select between them.
	Color  types.Vec3
	Color2 types.Vec3
}

type TextureType uint32

const (
	SolidTexture TextureType = iota
	CheckerTexture
	ImageTexture
	SdfTexture
	UVTexture
	PositionTexture
)

func (t TextureType) String() string {
	switch t {
	case SolidTexture:
		return "solid"
	case CheckerTexture:
		return "checker"
	case ImageTexture:
		return "image"
	case SdfTexture:
		return "sdf"
	case UVTexture:
		return "uv"
	case PositionTexture:
		return "position"
	}
	return "unknown"
}

// Texture mapping settings for a primitive.
type Texture struct {
	Type TextureType

	// Region of the image or atlas texture addressed by the primitive UVs
	// as (u0, v0, u1, v1).
	CoordRect types.Vec4

	Scale  types.Vec2
	Offset types.Vec2
}
