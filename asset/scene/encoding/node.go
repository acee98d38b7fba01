package encoding

import (
	"encoding/binary"

	"github.com/microsoft/morphcharts-sub000/asset/scene"
)

// Encode a linear BVH node array into a new buffer.
func EncodeBvhNodes(nodes []scene.BvhNode) []byte {
	buf := make([]byte, len(nodes)*BvhNodeStride)
	for index := range nodes {
		n := &nodes[index]
		r := recordAt(buf, index, BvhNodeStride)
		r.putVec3(nodeCenter, n.Center)
		r.putU32(nodeOffset, n.Offset)
		r.putVec3(nodeSize, n.Size)
		binary.LittleEndian.PutUint16(r[nodeCount:], n.Count)
		r[nodeAxis] = n.Axis
	}
	return buf
}

// Decode all BVH node records in a buffer.
func DecodeBvhNodes(buf []byte) []scene.BvhNode {
	nodes := make([]scene.BvhNode, len(buf)/BvhNodeStride)
	for index := range nodes {
		r := recordAt(buf, index, BvhNodeStride)
		nodes[index] = scene.BvhNode{
			Center: r.vec3(nodeCenter),
			Offset: r.u32(nodeOffset),
			Size:   r.vec3(nodeSize),
			Count:  binary.LittleEndian.Uint16(r[nodeCount:]),
			Axis:   r[nodeAxis],
		}
	}
	return nodes
}
