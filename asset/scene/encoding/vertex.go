package encoding

import "github.com/microsoft/morphcharts-sub000/types"

// A vertex of the display quad used to blit resolved frames.
type Vertex struct {
	Position types.Vec2
	TexCoord types.Vec2
}

// Get the two triangles covering clip space. Texture coordinates have their
// origin at the top-left corner.
func QuadVertices() []Vertex {
	return []Vertex{
		{types.Vec2{-1, -1}, types.Vec2{0, 1}},
		{types.Vec2{1, -1}, types.Vec2{1, 1}},
		{types.Vec2{1, 1}, types.Vec2{1, 0}},
		{types.Vec2{-1, -1}, types.Vec2{0, 1}},
		{types.Vec2{1, 1}, types.Vec2{1, 0}},
		{types.Vec2{-1, 1}, types.Vec2{0, 0}},
	}
}

// Encode a vertex list into a new buffer.
func EncodeVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexStride)
	for index := range vertices {
		r := recordAt(buf, index, VertexStride)
		r.putVec2(0, vertices[index].Position)
		r.putVec2(8, vertices[index].TexCoord)
	}
	return buf
}

// Decode all vertex records in a buffer.
func DecodeVertices(buf []byte) []Vertex {
	vertices := make([]Vertex, len(buf)/VertexStride)
	for index := range vertices {
		r := recordAt(buf, index, VertexStride)
		vertices[index] = Vertex{Position: r.vec2(0), TexCoord: r.vec2(8)}
	}
	return vertices
}
