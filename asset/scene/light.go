package scene

import (
	"fmt"

	"github.com/microsoft/morphcharts-sub000/types"
)

type LightKind uint32

const (
	DirectionalLight LightKind = iota
	PointLight
	SpotLight
	RectLight
	DiskLight
	SphereLight
	HemisphereLight
	ProjectorLight

	NumLightKinds
)

var lightKindNames = [NumLightKinds]string{
	"directional", "point", "spot", "rect", "disk", "sphere", "hemisphere", "projector",
}

func (k LightKind) String() string {
	if k < NumLightKinds {
		return lightKindNames[k]
	}
	return fmt.Sprintf("lightKind(%d)", uint32(k))
}

// Returns true for lights that are only seen by rays escaping the scene
// geometry rather than sampled with shadow rays.
func (k LightKind) IsArea() bool {
	return k == RectLight || k == DiskLight || k == SphereLight
}

// A scene light.
//
//   - directional: Direction points from the light towards the scene
//   - point: Center
//   - spot: Center, Direction, Angle (cone half-angle) and Falloff
//   - rect: Center, Rotation, Size[0]/Size[1] (facing local -Z)
//   - disk: Center, Rotation, Size[0] diameter (facing local -Z)
//   - sphere: Center, Size[0] diameter
//   - hemisphere: Color is the sky color, Color2 the ground color and
//     Direction the up vector
//   - projector: Center, Rotation, Angle (vertical field of view), Size[0]
//     aspect ratio, NearPlane; the projected texture is described by
//     TextureType, TextureScale and TextureOffset
type Light struct {
	Kind LightKind

	Color  types.Vec3
	Color2 types.Vec3

	Center    types.Vec3
	Direction types.Vec3
	Rotation  types.Quat
	Size      types.Vec3

	Angle     float32
	Falloff   float32
	NearPlane float32

	TextureType   TextureType
	TextureScale  types.Vec2
	TextureOffset types.Vec2
}

// Create a light of the given kind with an identity rotation.
func NewLight(kind LightKind, color types.Vec3) Light {
	return Light{
		Kind:         kind,
		Color:        color,
		Rotation:     types.QuatIdent(),
		TextureScale: types.Vec2{1, 1},
	}
}
