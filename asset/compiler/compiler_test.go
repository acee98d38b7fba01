package compiler

import (
	"testing"

	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/scene/encoding"
	"github.com/microsoft/morphcharts-sub000/types"
)

func TestCompileEmptyWorld(t *testing.T) {
	if _, err := Compile(&scene.World{}, DefaultOptions()); err != ErrEmptyWorld {
		t.Fatalf("expected to get ErrEmptyWorld; got %v", err)
	}
	if _, err := Compile(nil, DefaultOptions()); err != ErrEmptyWorld {
		t.Fatalf("expected to get ErrEmptyWorld; got %v", err)
	}
}

func TestCompile(t *testing.T) {
	world := &scene.World{
		Lights: []scene.Light{scene.NewLight(scene.PointLight, types.Vec3{1, 1, 1})},
	}
	for index := 0; index < 20; index++ {
		p := scene.NewPrimitive(scene.SpherePrimitive, types.Vec3{float32(index % 5), float32(index / 5), 0}, types.Vec3{0.5, 0.5, 0.5})
		p.Id = uint32(index)
		world.Primitives = append(world.Primitives, p)
	}

	sc, err := Compile(world, Options{MaxPrimsInNode: 2})
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Primitives) != len(world.Primitives) {
		t.Fatalf("expected %d ordered primitives; got %d", len(world.Primitives), len(sc.Primitives))
	}
	seen := make(map[uint32]bool)
	for _, p := range sc.Primitives {
		seen[p.Id] = true
	}
	if len(seen) != len(world.Primitives) {
		t.Fatalf("expected ordered primitives to be a permutation; got %d unique ids", len(seen))
	}

	if got := encoding.PrimitiveCount(sc.PrimitiveData); got != len(world.Primitives) {
		t.Fatalf("expected %d encoded primitives; got %d", len(world.Primitives), got)
	}
	if got := encoding.DecodePrimitive(sc.PrimitiveData, 3); got != sc.Primitives[3] {
		t.Fatalf("expected encoded primitive 3 to match ordered primitive; got %+v", got)
	}
	if got := encoding.LightCount(sc.LightData); got != 1 {
		t.Fatalf("expected 1 encoded light; got %d", got)
	}
	if got := len(encoding.DecodeBvhNodes(sc.BvhNodeData)); got != len(sc.BvhNodes) {
		t.Fatalf("expected %d encoded nodes; got %d", len(sc.BvhNodes), got)
	}

	for _, node := range sc.BvhNodes {
		if node.IsLeaf() && node.Count > 2 {
			t.Fatalf("expected leafs to contain at most 2 primitives; got %d", node.Count)
		}
	}

	other, err := Compile(world, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if other.Revision == sc.Revision {
		t.Fatal("expected each compilation to get a new revision")
	}
}
