package compiler

import (
	"time"

	"github.com/google/uuid"
	"github.com/microsoft/morphcharts-sub000/asset/compiler/bvh"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/scene/encoding"
	"github.com/microsoft/morphcharts-sub000/log"
)

const (
	DefaultMaxPrimsInNode = 4
)

// Compiler options.
type Options struct {
	// The maximum number of primitives stored in a BVH leaf.
	MaxPrimsInNode int

	// The strategy used for splitting BVH nodes.
	SplitStrategy bvh.SplitStrategy
}

// Get the default compiler options.
func DefaultOptions() Options {
	return Options{
		MaxPrimsInNode: DefaultMaxPrimsInNode,
		SplitStrategy:  bvh.SurfaceAreaHeuristic,
	}
}

type sceneCompiler struct {
	world    *scene.World
	opts     Options
	compiled *scene.Compiled
	logger   log.Logger
}

// Compile a world into a device-friendly scene: partition its primitives
// into a BVH, reorder them to match the BVH leafs and encode all records.
// Worlds without primitives are rejected with ErrEmptyWorld.
func Compile(world *scene.World, opts Options) (*scene.Compiled, error) {
	if world == nil || len(world.Primitives) == 0 {
		return nil, ErrEmptyWorld
	}
	if opts.MaxPrimsInNode <= 0 {
		opts.MaxPrimsInNode = DefaultMaxPrimsInNode
	}
	if opts.SplitStrategy == "" {
		opts.SplitStrategy = bvh.SurfaceAreaHeuristic
	}

	compiler := &sceneCompiler{
		world: world,
		opts:  opts,
		compiled: &scene.Compiled{
			Revision: uuid.New(),
			World:    world,
		},
		logger: log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene (revision %s)", compiler.compiled.Revision)

	compiler.partitionGeometry()
	compiler.encode()

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.compiled, nil
}

// Generate a BVH for the world primitives and store them in leaf order.
func (sc *sceneCompiler) partitionGeometry() {
	start := time.Now()
	sc.logger.Infof("partitioning %d primitives (strategy: %s, max prims per node: %d)", len(sc.world.Primitives), sc.opts.SplitStrategy, sc.opts.MaxPrimsInNode)

	// Zero rotations are treated as the identity
	prims := make([]scene.Primitive, len(sc.world.Primitives))
	items := make([]bvh.Item, len(prims))
	bounds := scene.EmptyBounds()
	for index := range prims {
		prims[index] = sc.world.Primitives[index]
		prims[index].Rotation = prims[index].Rotation.Normalize()
		primBounds := prims[index].Bounds()
		items[index] = bvh.NewItem(index, primBounds)
		bounds = bounds.Union(primBounds)
	}

	nodes, order := bvh.Build(items, sc.opts.MaxPrimsInNode, sc.opts.SplitStrategy)

	ordered := make([]scene.Primitive, len(order))
	for leafIndex, primIndex := range order {
		ordered[leafIndex] = prims[primIndex]
	}

	sc.compiled.Primitives = ordered
	sc.compiled.BvhNodes = nodes
	sc.compiled.Bounds = bounds
	sc.logger.Infof("partitioned geometry in %d ms (%d bvh nodes)", time.Since(start).Nanoseconds()/1e6, len(nodes))
}

// Encode primitives, lights and BVH nodes.
func (sc *sceneCompiler) encode() {
	start := time.Now()
	sc.compiled.PrimitiveData = encoding.EncodePrimitives(sc.compiled.Primitives)
	sc.compiled.LightData = encoding.EncodeLights(sc.world.Lights)
	sc.compiled.BvhNodeData = encoding.EncodeBvhNodes(sc.compiled.BvhNodes)
	sc.logger.Infof("encoded scene records in %d ms", time.Since(start).Nanoseconds()/1e6)
}
