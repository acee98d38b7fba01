package kernel

import (
	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/types"
)

// Exponent of the specular highlight used by the flat color mode.
const specularPower = 64

// Direct light arriving at a surface point, split into its diffuse and
// specular (Blinn-Phong) terms.
type lighting struct {
	diffuse  types.Vec3
	specular types.Vec3
}

// Gather direct light from all non area lights at a surface hit. Shadow
// rays test visibility for every light kind except hemisphere lights.
// viewDir points from the surface towards the viewer.
func (w *World) directLight(hit *SurfaceHit, viewDir types.Vec3) lighting {
	var out lighting
	for index := range w.Lights {
		l := &w.Lights[index]
		if l.Kind.IsArea() {
			continue
		}

		if l.Kind == scene.HemisphereLight {
			up := l.Direction.Normalize()
			if up.NearZero() {
				up = types.Vec3{0, 1, 0}
			}
			mix := 0.5*hit.Normal.Dot(up) + 0.5
			out.diffuse = out.diffuse.Add(l.Color2.Lerp(l.Color, mix))
			continue
		}

		toLight, distance, radiance := w.lightSample(l, hit.Position)
		if radiance.NearZero() {
			continue
		}
		nDotL := hit.Normal.Dot(toLight)
		if nDotL <= 0 {
			continue
		}
		if w.occluded(Ray{Origin: hit.Position, Direction: toLight}, RayEpsilon, distance-RayEpsilon) {
			continue
		}

		out.diffuse = out.diffuse.Add(radiance.Mul(nDotL))
		halfway := toLight.Add(viewDir).Normalize()
		if nDotH := hit.Normal.Dot(halfway); nDotH > 0 {
			out.specular = out.specular.Add(radiance.Mul(math32.Pow(nDotH, specularPower)))
		}
	}
	return out
}

// Get the direction and distance from a point to a light and the light
// radiance arriving at the point, ignoring occlusion.
func (w *World) lightSample(l *scene.Light, pos types.Vec3) (types.Vec3, float32, types.Vec3) {
	switch l.Kind {
	case scene.DirectionalLight:
		return l.Direction.Normalize().Neg(), math32.MaxFloat32, l.Color
	case scene.PointLight, scene.SpotLight, scene.ProjectorLight:
		toLight := l.Center.Sub(pos)
		distance := toLight.Len()
		if distance < RayEpsilon {
			return types.Vec3{}, 0, types.Vec3{}
		}
		toLight = toLight.Mul(1 / distance)
		switch l.Kind {
		case scene.SpotLight:
			return toLight, distance, l.Color.Mul(spotFactor(l, toLight.Neg()))
		case scene.ProjectorLight:
			return toLight, distance, w.projectorRadiance(l, pos)
		}
		return toLight, distance, l.Color
	}
	return types.Vec3{}, 0, types.Vec3{}
}

// Smooth cone falloff of a spot light for a direction leaving the light.
func spotFactor(l *scene.Light, dir types.Vec3) float32 {
	cosTheta := dir.Dot(l.Direction.Normalize())
	outer := math32.Cos(l.Angle)
	inner := math32.Cos(l.Angle * (1 - l.Falloff))
	if inner <= outer {
		if cosTheta >= outer {
			return 1
		}
		return 0
	}
	return smoothstep(outer, inner, cosTheta)
}

// Radiance projected onto a point by a projector light. The projector
// looks down its local -Z axis through a rectangle with vertical field of
// view Angle and aspect ratio Size[0]; points closer than the near plane
// receive no light.
func (w *World) projectorRadiance(l *scene.Light, pos types.Vec3) types.Vec3 {
	local := l.Rotation.Normalize().InverseRotate(pos.Sub(l.Center))
	depth := -local[2]
	if depth <= 0 || depth < l.NearPlane {
		return types.Vec3{}
	}

	tanHalf := math32.Tan(0.5 * l.Angle)
	aspect := l.Size[0]
	if aspect <= 0 {
		aspect = 1
	}
	x := local[0] / (depth * tanHalf * aspect)
	y := local[1] / (depth * tanHalf)
	if math32.Abs(x) > 1 || math32.Abs(y) > 1 {
		return types.Vec3{}
	}

	uv := types.Vec2{0.5*x + 0.5, 0.5 - 0.5*y}
	switch l.TextureType {
	case scene.CheckerTexture:
		if checkerParity(uv, l.TextureScale, l.TextureOffset) {
			return l.Color
		}
		return l.Color2
	case scene.ImageTexture:
		if w.Image == nil {
			return l.Color
		}
		u := uv[0]*l.TextureScale[0] + l.TextureOffset[0]
		v := uv[1]*l.TextureScale[1] + l.TextureOffset[1]
		return w.Image.Sample(u, v).Vec3().MulVec(l.Color)
	}
	return l.Color
}

// Radiance carried by a ray that escaped the scene after at least one
// bounce: the ambient color plus any area light the ray runs into.
func (w *World) missRadiance(r Ray) types.Vec3 {
	radiance := w.Ambient
	for index := range w.Lights {
		l := &w.Lights[index]
		if l.Kind.IsArea() && hitAreaLight(l, r) {
			radiance = radiance.Add(l.Color)
		}
	}
	return radiance
}

// Test a ray against the emitting surface of an area light. Rect and disk
// lights emit towards their local -Z axis.
func hitAreaLight(l *scene.Light, r Ray) bool {
	if l.Kind == scene.SphereLight {
		var hit localHit
		return hitSphere(0.5*l.Size[0], r.Origin.Sub(l.Center), r.Direction, 0, math32.MaxFloat32, &hit)
	}

	lo := l.Rotation.Normalize().InverseRotate(r.Origin.Sub(l.Center))
	ld := l.Rotation.Normalize().InverseRotate(r.Direction)
	if ld[2] <= 0 {
		return false
	}
	t := -lo[2] / ld[2]
	if t <= 0 {
		return false
	}
	p := lo.Add(ld.Mul(t))

	switch l.Kind {
	case scene.RectLight:
		return math32.Abs(p[0]) <= 0.5*l.Size[0] && math32.Abs(p[1]) <= 0.5*l.Size[1]
	case scene.DiskLight:
		radius := 0.5 * l.Size[0]
		return p[0]*p[0]+p[1]*p[1] <= radius*radius
	}
	return false
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
