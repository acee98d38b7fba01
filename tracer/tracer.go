package tracer

import (
	"time"

	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/types"
)

// A unit of work that is processed by a tracer: add a number of samples per
// pixel to the accumulated tile and resolve it.
type BlockRequest struct {
	// Tile dims.
	FrameW uint32
	FrameH uint32

	// The tile grid and the tile being rendered. A tiled render maps tile
	// pixel (x, y) to pixel (TileOffsetX*FrameW + x, TileOffsetY*FrameH + y)
	// of the full image.
	TilesX      uint32
	TilesY      uint32
	TileOffsetX uint32
	TileOffsetY uint32

	// Camera eye and frustum corner rays for the full image.
	Eye     types.Vec3
	Frustum scene.Frustum

	// Number of samples already accumulated for this tile. The
	// accumulator is cleared when this is 0.
	FrameCount uint32

	// The number of samples per pixel added by this request.
	SamplesPerPixel uint32

	RenderMode  scene.RenderMode
	Multisample uint32
	MaxDepth    uint32

	// The exposure value controls HDR -> LDR mapping.
	Exposure float32
}

// The number of samples accumulated once the request completes.
func (r *BlockRequest) AccumulatedSamples() uint32 {
	return r.FrameCount + r.SamplesPerPixel
}

// Tracer statistics for the last processed request.
type Stats struct {
	// Time spent uploading scene data since the previous request.
	UpdateTime time.Duration

	// Time spent in each pipeline stage. Post-processing includes the
	// resolve stage.
	ResetTime       time.Duration
	IntegrateTime   time.Duration
	PostProcessTime time.Duration

	// Total time for processing the request.
	RenderTime time.Duration

	// The number of samples added and the accumulated total.
	Samples            uint32
	AccumulatedSamples uint32
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Initialize the tracer and allocate buffers for the given tile dims.
	// Calling Init again resizes the tile buffers.
	Init(frameW, frameH uint32) error

	// Shutdown and cleanup tracer.
	Close()

	// Upload a compiled scene. Subsequent requests render this scene.
	UpdateState(sc *scene.Compiled) error

	// Process a block request and wait for it to complete.
	Trace(req *BlockRequest) error

	// Copy the resolved tile (RGBA float32 values, row-major) into dst.
	SyncFramebuffer(dst []float32) error

	// Retrieve last request statistics.
	Stats() *Stats
}
