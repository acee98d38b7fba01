package scene

import "github.com/microsoft/morphcharts-sub000/types"

// A linear BVH node. Nodes are laid out in depth-first pre-order so the
// first child of an interior node always follows it directly.
//
// - For leaf nodes Count > 0 and Offset points to the first primitive in
//   the ordered primitive list
// - For interior nodes Count == 0 and Offset points to the second child
//   node; Axis holds the split axis
type BvhNode struct {
	Center types.Vec3
	Offset uint32
	Size   types.Vec3
	Count  uint16
	Axis   uint8
}

// Set bounding box.
func (n *BvhNode) SetBounds(b Bounds) {
	n.Center = b.Centroid()
	n.Size = b.Diagonal()
}

// Get bounding box.
func (n *BvhNode) Bounds() Bounds {
	half := n.Size.Mul(0.5)
	return Bounds{Min: n.Center.Sub(half), Max: n.Center.Add(half)}
}

// Set primitive index and count.
func (n *BvhNode) SetPrimitives(firstPrimIndex uint32, count uint16) {
	n.Offset = firstPrimIndex
	n.Count = count
	n.Axis = 0
}

// Get primitive index and count.
func (n *BvhNode) Primitives() (firstPrimIndex uint32, count uint16) {
	return n.Offset, n.Count
}

// Set second child node index and split axis.
func (n *BvhNode) SetSecondChild(index uint32, axis uint8) {
	n.Offset = index
	n.Count = 0
	n.Axis = axis
}

func (n *BvhNode) IsLeaf() bool {
	return n.Count > 0
}
