package encoding

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/types"
	"github.com/stretchr/testify/require"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	prims := make([]scene.Primitive, 0, scene.NumPrimitiveKinds)
	for kind := scene.PrimitiveKind(0); kind < scene.NumPrimitiveKinds; kind++ {
		p := scene.NewPrimitive(kind, types.Vec3{float32(kind), -2, 3.5}, types.Vec3{1, 2, 3})
		p.Rotation = types.QuatFromAxisAngle(types.Vec3{1, 1, 0}, 0.3*float32(kind))
		p.Rounding = 0.125
		p.Parameters = [4]float32{0.5, 0.25, 3.1, -1}
		p.Material = scene.Material{
			Type:            scene.MaterialType(uint32(kind) % 5),
			Fuzz:            0.1,
			Gloss:           0.9,
			Density:         2,
			RefractiveIndex: 1.33,
			Color:           types.Vec3{4, 8, 16},
			Color2:          types.Vec3{0.1, 0.2, 0.3},
		}
		p.Texture = scene.Texture{
			Type:      scene.CheckerTexture,
			CoordRect: types.Vec4{0, 0.25, 0.5, 1},
			Scale:     types.Vec2{2, 3},
			Offset:    types.Vec2{-1, 1},
		}
		p.SegmentColor = types.Vec4{0.25, 0.5, 0.75, 1}
		p.SdfBuffer = 0.75
		p.SdfHalo = 0.05
		p.Id = uint32(1000 + kind)
		prims = append(prims, p)
	}

	buf := EncodePrimitives(prims)
	require.Len(t, buf, len(prims)*PrimitiveStride)
	require.Equal(t, len(prims), PrimitiveCount(buf))
	require.Equal(t, prims, DecodePrimitives(buf))
}

func TestPrimitiveLayout(t *testing.T) {
	p := scene.NewPrimitive(scene.SdfTubePrimitive, types.Vec3{1, 2, 3}, types.Vec3{4, 5, 6})
	p.Id = 42
	buf := EncodePrimitives([]scene.Primitive{p, p})

	second := buf[PrimitiveStride:]
	require.Equal(t, uint32(scene.SdfTubePrimitive), binary.LittleEndian.Uint32(second[12:]))
	require.Equal(t, float32(2), math.Float32frombits(binary.LittleEndian.Uint32(second[4:])))
	require.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(second[16:])))
	require.Equal(t, uint32(42), binary.LittleEndian.Uint32(second[168:]))

	// Identity rotation is stored as (0, 0, 0, 1)
	require.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(second[44:])))
}

func TestZeroRotationEncodedAsIdentity(t *testing.T) {
	buf := EncodePrimitives([]scene.Primitive{{Kind: scene.SpherePrimitive}})
	p := DecodePrimitive(buf, 0)
	require.Equal(t, types.QuatIdent(), p.Rotation)

	lbuf := EncodeLights([]scene.Light{{Kind: scene.PointLight}})
	require.Equal(t, types.QuatIdent(), DecodeLight(lbuf, 0).Rotation)
}

func TestLightRoundTrip(t *testing.T) {
	lights := make([]scene.Light, 0, scene.NumLightKinds)
	for kind := scene.LightKind(0); kind < scene.NumLightKinds; kind++ {
		l := scene.NewLight(kind, types.Vec3{10, 20, 30})
		l.Color2 = types.Vec3{0.5, 0.5, 0.5}
		l.Center = types.Vec3{1, 2, float32(kind)}
		l.Direction = types.Vec3{0, -1, 0}
		l.Rotation = types.QuatFromAxisAngle(types.Vec3{0, 0, 1}, 0.7)
		l.Size = types.Vec3{2, 1, 0}
		l.Angle = 0.4
		l.Falloff = 0.1
		l.NearPlane = 0.5
		l.TextureType = scene.ImageTexture
		l.TextureScale = types.Vec2{2, 2}
		l.TextureOffset = types.Vec2{0.5, 0}
		lights = append(lights, l)
	}

	buf := EncodeLights(lights)
	require.Len(t, buf, len(lights)*LightStride)
	require.Equal(t, lights, DecodeLights(buf))
}

func TestBvhNodeRoundTrip(t *testing.T) {
	nodes := make([]scene.BvhNode, 3)
	nodes[0].SetBounds(scene.Bounds{Min: types.Vec3{-1, -1, -1}, Max: types.Vec3{1, 1, 1}})
	nodes[0].SetSecondChild(2, 1)
	nodes[1].SetBounds(scene.Bounds{Min: types.Vec3{-1, -1, -1}, Max: types.Vec3{0, 1, 1}})
	nodes[1].SetPrimitives(0, 65535)
	nodes[2].SetBounds(scene.Bounds{Min: types.Vec3{0, -1, -1}, Max: types.Vec3{1, 1, 1}})
	nodes[2].SetPrimitives(65535, 1)

	buf := EncodeBvhNodes(nodes)
	require.Len(t, buf, 3*BvhNodeStride)
	require.Equal(t, nodes, DecodeBvhNodes(buf))
	require.Equal(t, uint8(1), buf[30])
}

func TestQuadVertices(t *testing.T) {
	vertices := QuadVertices()
	require.Len(t, vertices, 6)

	buf := EncodeVertices(vertices)
	require.Len(t, buf, 6*VertexStride)
	require.Equal(t, vertices, DecodeVertices(buf))
}

func TestUniformsRoundTrip(t *testing.T) {
	u := FrameUniforms{
		Eye:            types.Vec3{0, 0, 5},
		Frustum:        scene.Frustum{{-1, 1, -1, 0}, {1, 1, -1, 0}, {-1, -1, -1, 0}, {1, -1, -1, 0}},
		Width:          640,
		Height:         480,
		FrameCount:     12,
		Samples:        4,
		RenderMode:     scene.EdgeMode,
		TilesX:         2,
		TilesY:         3,
		TileOffsetX:    1,
		TileOffsetY:    2,
		Multisample:    3,
		MaxDepth:       8,
		PrimitiveCount: 100,
		LightCount:     2,
		Background:     types.Vec4{0.1, 0.2, 0.3, 1},
		Ambient:        types.Vec4{0.5, 0.5, 0.5, 1},
		Exposure:       1.5,
		Flags:          FlagOverdispatch,
	}

	buf := EncodeUniforms(&u)
	require.Len(t, buf, UniformsStride)
	require.Equal(t, u, DecodeUniforms(buf))
	require.Equal(t, uint32(480), binary.LittleEndian.Uint32(buf[80:]))
}
