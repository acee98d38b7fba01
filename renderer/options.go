package renderer

import (
	"time"

	"github.com/microsoft/morphcharts-sub000/asset/compiler"
	"github.com/microsoft/morphcharts-sub000/asset/compiler/bvh"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/tracer/kernel"
)

type Options struct {
	// Tile dims. The rendered image is (TilesX*FrameW) x (TilesY*FrameH).
	FrameW uint32
	FrameH uint32

	// Tile grid.
	TilesX uint32
	TilesY uint32

	// Number of samples per pixel accumulated for each tile. Non
	// progressive render modes always use a single sample. A value of 0
	// accumulates raytraced samples indefinitely.
	SamplesPerPixel uint32

	// Number of samples added by each dispatch. If FrameBudget is set the
	// count adapts to fit the budget and this value caps it.
	SamplesPerFrame uint32
	FrameBudget     time.Duration

	RenderMode  scene.RenderMode
	Multisample uint32

	// Max number of path bounces.
	MaxDepth uint32

	// Exposure for tonemapping.
	Exposure float32

	// BVH settings.
	MaxPrimsInNode int
	SplitStrategy  bvh.SplitStrategy
}

// Get the default renderer options.
func DefaultOptions() Options {
	return Options{
		FrameW:          512,
		FrameH:          512,
		TilesX:          1,
		TilesY:          1,
		SamplesPerPixel: 64,
		SamplesPerFrame: 1,
		RenderMode:      scene.RaytraceMode,
		Multisample:     1,
		MaxDepth:        kernel.DefaultMaxDepth,
		Exposure:        1,
		MaxPrimsInNode:  compiler.DefaultMaxPrimsInNode,
		SplitStrategy:   bvh.SurfaceAreaHeuristic,
	}
}

// Get the scene compiler options.
func (opts *Options) compilerOptions() compiler.Options {
	return compiler.Options{
		MaxPrimsInNode: opts.MaxPrimsInNode,
		SplitStrategy:  opts.SplitStrategy,
	}
}
