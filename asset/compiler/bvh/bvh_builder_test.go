package bvh

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/types"
)

func TestLeafCount(t *testing.T) {
	type primSpec struct {
		min types.Vec3
		max types.Vec3
	}

	primSpecs := []primSpec{
		{types.Vec3{-2, 0, -2}, types.Vec3{-1, 1, -1}},
		{types.Vec3{1, 0, -2}, types.Vec3{2, 1, -1}},
		{types.Vec3{-2, 0, 1}, types.Vec3{-1, 1, 2}},
		{types.Vec3{1, 0, 1}, types.Vec3{2, 1, 2}},
	}

	items := make([]Item, len(primSpecs))
	for idx, ps := range primSpecs {
		items[idx] = NewItem(idx, scene.Bounds{Min: ps.min, Max: ps.max})
	}

	specs := []struct {
		maxPrims   int
		expNodes   int
		expLeafs   int
		expPerLeaf int
	}{
		{1, 7, 4, 1},
		{2, 3, 2, 2},
	}

	for specIndex, spec := range specs {
		nodes, order := Build(items, spec.maxPrims, SurfaceAreaHeuristic)
		if len(nodes) != spec.expNodes {
			t.Fatalf("[spec %d] expected bvh tree to have %d nodes; got %d", specIndex, spec.expNodes, len(nodes))
		}
		if len(order) != len(items) {
			t.Fatalf("[spec %d] expected order to have %d entries; got %d", specIndex, len(items), len(order))
		}

		leafs := 0
		for _, node := range nodes {
			if !node.IsLeaf() {
				continue
			}
			leafs++
			if int(node.Count) != spec.expPerLeaf {
				t.Fatalf("[spec %d] expected leaf to contain %d items; got %d", specIndex, spec.expPerLeaf, node.Count)
			}
		}
		if leafs != spec.expLeafs {
			t.Fatalf("[spec %d] expected %d leafs; got %d", specIndex, spec.expLeafs, leafs)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	nodes, order := Build(nil, 4, SurfaceAreaHeuristic)
	if len(nodes) != 0 || len(order) != 0 {
		t.Fatalf("expected empty output; got %d nodes and %d indices", len(nodes), len(order))
	}
}

func TestDegenerateCentroids(t *testing.T) {
	items := make([]Item, 100)
	for idx := range items {
		items[idx] = NewItem(idx, scene.Bounds{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{0, 0, 0}})
	}

	nodes, order := Build(items, 4, SurfaceAreaHeuristic)
	validateTree(t, items, nodes, order, 4)
}

func TestRandomTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, strategy := range []SplitStrategy{SurfaceAreaHeuristic, EqualCounts} {
		for _, count := range []int{1, 2, 3, 17, 1000} {
			items := randomItems(rng, count)
			nodes, order := Build(items, 4, strategy)
			validateTree(t, items, nodes, order, 4)

			// Builds must be deterministic even when candidates are scored in parallel
			nodes2, order2 := Build(items, 4, strategy)
			if !reflect.DeepEqual(nodes, nodes2) || !reflect.DeepEqual(order, order2) {
				t.Fatalf("[%s/%d] expected repeated builds to produce the same tree", strategy, count)
			}
		}
	}
}

func TestParseSplitStrategy(t *testing.T) {
	if s, err := ParseSplitStrategy("sah"); err != nil || s != SurfaceAreaHeuristic {
		t.Fatalf("expected to parse sah strategy; got %q, %v", s, err)
	}
	if _, err := ParseSplitStrategy("octree"); err == nil {
		t.Fatal("expected unknown strategy to fail")
	}
}

func randomItems(rng *rand.Rand, count int) []Item {
	items := make([]Item, count)
	for idx := range items {
		center := types.Vec3{rng.Float32()*20 - 10, rng.Float32()*20 - 10, rng.Float32()*20 - 10}
		half := types.Vec3{rng.Float32() + 0.01, rng.Float32() + 0.01, rng.Float32() + 0.01}
		items[idx] = NewItem(idx, scene.Bounds{Min: center.Sub(half), Max: center.Add(half)})
	}
	return items
}

// Check the pre-order layout, leaf ranges and containment of item bounds.
func validateTree(t *testing.T, items []Item, nodes []scene.BvhNode, order []int, maxPrims int) {
	t.Helper()

	if len(order) != len(items) {
		t.Fatalf("expected order to have %d entries; got %d", len(items), len(order))
	}
	seen := make([]bool, len(items))
	for _, index := range order {
		if seen[index] {
			t.Fatalf("item %d appears more than once in the ordered list", index)
		}
		seen[index] = true
	}

	covered := 0
	var visit func(nodeIndex uint32, depth int)
	visit = func(nodeIndex uint32, depth int) {
		if depth > 64 {
			t.Fatalf("expected tree depth to be at most 64")
		}
		node := nodes[nodeIndex]
		bounds := node.Bounds()
		if !node.IsLeaf() {
			if node.Offset <= nodeIndex+1 || int(node.Offset) >= len(nodes) {
				t.Fatalf("node %d: invalid second child offset %d", nodeIndex, node.Offset)
			}
			visit(nodeIndex+1, depth+1)
			visit(node.Offset, depth+1)
			return
		}

		if int(node.Count) > maxPrims && !allCentroidsEqual(items, order[node.Offset:node.Offset+uint32(node.Count)]) {
			t.Fatalf("node %d: expected leaf to contain at most %d items; got %d", nodeIndex, maxPrims, node.Count)
		}
		for _, index := range order[node.Offset : node.Offset+uint32(node.Count)] {
			b := items[index].Bounds
			if !types.ApproxEqual(types.MinVec3(b.Min, bounds.Min), bounds.Min, 1e-4) ||
				!types.ApproxEqual(types.MaxVec3(b.Max, bounds.Max), bounds.Max, 1e-4) {
				t.Fatalf("node %d: leaf bounds do not contain item %d", nodeIndex, index)
			}
		}
		covered += int(node.Count)
	}
	visit(0, 0)

	if covered != len(items) {
		t.Fatalf("expected leafs to cover %d items; got %d", len(items), covered)
	}
}

func allCentroidsEqual(items []Item, indices []int) bool {
	for _, index := range indices {
		if items[index].Centroid != items[indices[0]].Centroid {
			return false
		}
	}
	return true
}
