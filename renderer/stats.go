package renderer

import (
	"time"

	"github.com/google/uuid"
	"github.com/microsoft/morphcharts-sub000/tracer"
)

type FrameStats struct {
	// The tracer id.
	TracerId string

	// The controller state after the frame.
	State State

	// The compiled world revision.
	Revision uuid.UUID

	// The rendered tile and the tile grid.
	TileX  uint32
	TileY  uint32
	TilesX uint32
	TilesY uint32

	// Accumulated samples for the current tile and the sample target.
	FrameCount    uint32
	TargetSamples uint32

	// Number of dispatched frames since the controller was created.
	Frames uint64

	// Sum of the elapsed times reported by the caller.
	Elapsed time.Duration

	// Statistics for the last dispatched frame.
	Tracer tracer.Stats

	// Total render time for all dispatched frames.
	RenderTime time.Duration
}
