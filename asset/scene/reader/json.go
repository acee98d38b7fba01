package reader

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/microsoft/morphcharts-sub000/asset"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/texture"
	"github.com/microsoft/morphcharts-sub000/log"
	"github.com/microsoft/morphcharts-sub000/types"
)

type jsonCamera struct {
	Position []float32 `json:"position"`
	LookAt   []float32 `json:"lookAt"`
	Up       []float32 `json:"up"`
	FOV      float32   `json:"fov"`
}

type jsonMaterial struct {
	Type            string    `json:"type"`
	Color           []float32 `json:"color"`
	Color2          []float32 `json:"color2"`
	Fuzz            float32   `json:"fuzz"`
	Gloss           float32   `json:"gloss"`
	Density         float32   `json:"density"`
	RefractiveIndex float32   `json:"refractiveIndex"`
}

type jsonTexture struct {
	Type      string    `json:"type"`
	CoordRect []float32 `json:"coordRect"`
	Scale     []float32 `json:"scale"`
	Offset    []float32 `json:"offset"`
}

type jsonPrimitive struct {
	Kind         string        `json:"kind"`
	Center       []float32     `json:"center"`
	Size         []float32     `json:"size"`
	Rotation     []float32     `json:"rotation"`
	Rounding     float32       `json:"rounding"`
	Parameters   []float32     `json:"parameters"`
	Material     *jsonMaterial `json:"material"`
	Texture      *jsonTexture  `json:"texture"`
	SegmentColor []float32     `json:"segmentColor"`
	SdfBuffer    float32       `json:"sdfBuffer"`
	SdfHalo      float32       `json:"sdfHalo"`
	Id           uint32        `json:"id"`
}

type jsonLight struct {
	Kind      string       `json:"kind"`
	Color     []float32    `json:"color"`
	Color2    []float32    `json:"color2"`
	Center    []float32    `json:"center"`
	Direction []float32    `json:"direction"`
	Rotation  []float32    `json:"rotation"`
	Size      []float32    `json:"size"`
	Angle     float32      `json:"angle"`
	Falloff   float32      `json:"falloff"`
	NearPlane float32      `json:"nearPlane"`
	Texture   *jsonTexture `json:"texture"`
}

// The on-disk world description. Vectors are encoded as number arrays and
// rotations as [x, y, z, w] quaternions. Image and atlas paths are resolved
// relative to the scene file.
type jsonScene struct {
	Camera     *jsonCamera     `json:"camera"`
	Background []float32       `json:"background"`
	Ambient    []float32       `json:"ambient"`
	Image      string          `json:"image"`
	Atlas      string          `json:"atlas"`
	Primitives []jsonPrimitive `json:"primitives"`
	Lights     []jsonLight     `json:"lights"`
}

type jsonSceneReader struct {
	logger log.Logger

	// The first conversion error; once set all further conversions
	// return their defaults.
	err error
}

// Create a new json scene reader.
func newJsonSceneReader() *jsonSceneReader {
	return &jsonSceneReader{
		logger: log.New("json reader"),
	}
}

// Read scene definition from a json resource.
func (r *jsonSceneReader) Read(sceneRes *asset.Resource) (*Scene, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	var in jsonScene
	decoder := json.NewDecoder(sceneRes)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&in); err != nil {
		return nil, fmt.Errorf("jsonSceneReader: could not parse %s: %w", sceneRes.Path(), err)
	}

	sc, err := r.convert(&in)
	if err != nil {
		return nil, fmt.Errorf("jsonSceneReader: %s: %w", sceneRes.Path(), err)
	}

	if in.Image != "" {
		if sc.World.Image, err = r.loadTexture(in.Image, sceneRes, texture.New); err != nil {
			return nil, err
		}
	}
	if in.Atlas != "" {
		if sc.World.Atlas, err = r.loadTexture(in.Atlas, sceneRes, texture.NewAtlas); err != nil {
			return nil, err
		}
	}

	r.logger.Noticef(
		"parsed scene with %d primitives and %d lights in %d ms",
		len(sc.World.Primitives), len(sc.World.Lights), time.Since(start).Nanoseconds()/1e6,
	)
	return sc, nil
}

func (r *jsonSceneReader) loadTexture(path string, relTo *asset.Resource, load func(*asset.Resource) (*texture.Texture, error)) (*texture.Texture, error) {
	res, err := asset.NewResource(path, relTo)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	r.logger.Infof(`loading texture "%s"`, res.Path())
	return load(res)
}

func (r *jsonSceneReader) convert(in *jsonScene) (*Scene, error) {
	world := &scene.World{
		Background: r.vec4("background", in.Background, types.Vec4{0, 0, 0, 1}),
		Ambient:    r.vec3("ambient", in.Ambient, types.Vec3{}),
		Primitives: make([]scene.Primitive, 0, len(in.Primitives)),
		Lights:     make([]scene.Light, 0, len(in.Lights)),
	}

	for index := range in.Primitives {
		world.Primitives = append(world.Primitives, r.primitive(index, &in.Primitives[index]))
	}
	for index := range in.Lights {
		world.Lights = append(world.Lights, r.light(index, &in.Lights[index]))
	}

	cam := defaultCamera()
	if in.Camera != nil {
		if in.Camera.FOV > 0 {
			cam.FOV = in.Camera.FOV
		}
		cam.Position = r.vec3("camera position", in.Camera.Position, cam.Position)
		cam.LookAt = r.vec3("camera lookAt", in.Camera.LookAt, cam.LookAt)
		cam.Up = r.vec3("camera up", in.Camera.Up, cam.Up)
		cam.SetupProjection(cam.Aspect())
	}

	if r.err != nil {
		return nil, r.err
	}
	return &Scene{World: world, Camera: cam}, nil
}

func (r *jsonSceneReader) primitive(index int, in *jsonPrimitive) scene.Primitive {
	field := func(name string) string { return fmt.Sprintf("primitive %d %s", index, name) }

	kind := scene.PrimitiveKind(r.enum(field("kind"), in.Kind, int(scene.NumPrimitiveKinds), func(i int) string {
		return scene.PrimitiveKind(i).String()
	}))
	p := scene.NewPrimitive(kind, r.vec3(field("center"), in.Center, types.Vec3{}), r.vec3(field("size"), in.Size, types.Vec3{1, 1, 1}))
	p.Rotation = r.quat(field("rotation"), in.Rotation)
	p.Rounding = in.Rounding
	p.SegmentColor = r.vec4(field("segmentColor"), in.SegmentColor, types.Vec4{})
	p.SdfBuffer = in.SdfBuffer
	p.SdfHalo = in.SdfHalo
	p.Id = in.Id

	if len(in.Parameters) > len(p.Parameters) && r.err == nil {
		r.err = fmt.Errorf("expected %s to have at most %d values; got %d", field("parameters"), len(p.Parameters), len(in.Parameters))
	}
	copy(p.Parameters[:], in.Parameters)

	if in.Material != nil {
		p.Material = r.material(field("material"), in.Material, p.Material)
	}
	if in.Texture != nil {
		p.Texture = r.texture(field("texture"), in.Texture)
	}
	return p
}

func (r *jsonSceneReader) material(field string, in *jsonMaterial, def scene.Material) scene.Material {
	mat := def
	if in.Type != "" {
		mat.Type = scene.MaterialType(r.enum(field+" type", in.Type, int(scene.DiffuseLightMaterial)+1, func(i int) string {
			return scene.MaterialType(i).String()
		}))
	}
	mat.Color = r.vec3(field+" color", in.Color, mat.Color)
	mat.Color2 = r.vec3(field+" color2", in.Color2, mat.Color2)
	mat.Fuzz = in.Fuzz
	mat.Gloss = in.Gloss
	mat.Density = in.Density
	if in.RefractiveIndex != 0 {
		mat.RefractiveIndex = in.RefractiveIndex
	}
	return mat
}

func (r *jsonSceneReader) texture(field string, in *jsonTexture) scene.Texture {
	return scene.Texture{
		Type:      r.textureType(field+" type", in.Type),
		CoordRect: r.vec4(field+" coordRect", in.CoordRect, types.Vec4{0, 0, 1, 1}),
		Scale:     r.vec2(field+" scale", in.Scale, types.Vec2{1, 1}),
		Offset:    r.vec2(field+" offset", in.Offset, types.Vec2{}),
	}
}

func (r *jsonSceneReader) textureType(field, name string) scene.TextureType {
	if name == "" {
		return scene.SolidTexture
	}
	return scene.TextureType(r.enum(field, name, int(scene.PositionTexture)+1, func(i int) string {
		return scene.TextureType(i).String()
	}))
}

func (r *jsonSceneReader) light(index int, in *jsonLight) scene.Light {
	field := func(name string) string { return fmt.Sprintf("light %d %s", index, name) }

	kind := scene.LightKind(r.enum(field("kind"), in.Kind, int(scene.NumLightKinds), func(i int) string {
		return scene.LightKind(i).String()
	}))
	l := scene.NewLight(kind, r.vec3(field("color"), in.Color, types.Vec3{1, 1, 1}))
	l.Color2 = r.vec3(field("color2"), in.Color2, types.Vec3{})
	l.Center = r.vec3(field("center"), in.Center, types.Vec3{})
	l.Direction = r.vec3(field("direction"), in.Direction, types.Vec3{0, -1, 0})
	l.Rotation = r.quat(field("rotation"), in.Rotation)
	l.Size = r.vec3(field("size"), in.Size, types.Vec3{1, 1, 1})
	l.Angle = in.Angle
	l.Falloff = in.Falloff
	l.NearPlane = in.NearPlane
	if in.Texture != nil {
		tex := r.texture(field("texture"), in.Texture)
		l.TextureType = tex.Type
		l.TextureScale = tex.Scale
		l.TextureOffset = tex.Offset
	}
	return l
}

// Match name against the String() values of an enum with count entries.
func (r *jsonSceneReader) enum(field, name string, count int, nameOf func(int) string) int {
	if r.err != nil {
		return 0
	}
	names := make([]string, 0, count)
	for index := 0; index < count; index++ {
		if strings.EqualFold(name, nameOf(index)) {
			return index
		}
		names = append(names, nameOf(index))
	}
	r.err = fmt.Errorf("unknown %s %q; supported values: %s", field, name, strings.Join(names, ", "))
	return 0
}

func (r *jsonSceneReader) components(field string, in []float32, count int) bool {
	if in == nil || r.err != nil {
		return false
	}
	if len(in) != count {
		r.err = fmt.Errorf("expected %s to have %d components; got %d", field, count, len(in))
		return false
	}
	return true
}

func (r *jsonSceneReader) vec2(field string, in []float32, def types.Vec2) types.Vec2 {
	if !r.components(field, in, 2) {
		return def
	}
	return types.Vec2{in[0], in[1]}
}

func (r *jsonSceneReader) vec3(field string, in []float32, def types.Vec3) types.Vec3 {
	if !r.components(field, in, 3) {
		return def
	}
	return types.Vec3{in[0], in[1], in[2]}
}

func (r *jsonSceneReader) vec4(field string, in []float32, def types.Vec4) types.Vec4 {
	if !r.components(field, in, 4) {
		return def
	}
	return types.Vec4{in[0], in[1], in[2], in[3]}
}

func (r *jsonSceneReader) quat(field string, in []float32) types.Quat {
	if !r.components(field, in, 4) {
		return types.QuatIdent()
	}
	return types.QuatXYZW(in[0], in[1], in[2], in[3]).Normalize()
}
