// Package renderer implements the frame controller that drives progressive
// accumulation and tiling on top of a tracer.
package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/microsoft/morphcharts-sub000/asset/compiler"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/log"
	"github.com/microsoft/morphcharts-sub000/tracer"
	"github.com/microsoft/morphcharts-sub000/tracer/device"
	"github.com/microsoft/morphcharts-sub000/tracer/kernel"
)

// A tile that reached its sample target.
type Tile struct {
	// Tile offset in the tile grid.
	X uint32
	Y uint32

	Width  uint32
	Height uint32

	Samples uint32

	// Resolved RGBA values, row-major.
	Pixels []float32
}

// A function invoked whenever a tile reaches its sample target.
type TileCallback func(tile *Tile)

// The Controller decides when the accumulated samples must be discarded,
// how many samples each frame adds and which tile is rendered. All methods
// must be called from the same goroutine.
type Controller struct {
	logger log.Logger

	tracer    tracer.Tracer
	scheduler tracer.SampleScheduler
	opts      Options

	camera   *scene.Camera
	compiled *scene.Compiled

	state      State
	frameCount uint32
	tileX      uint32
	tileY      uint32

	// Events whose device side effects have not been applied yet.
	pending Event

	// Set once the device is lost; all subsequent frames fail with it.
	lost error

	onTile    TileCallback
	lastTrace *tracer.Stats
	stats     FrameStats
}

// Create a new controller that renders frames with the given tracer. The
// controller stays Idle until a world is set.
func NewController(tr tracer.Tracer, opts Options) (*Controller, error) {
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrame
	}
	if opts.TilesX == 0 {
		opts.TilesX = 1
	}
	if opts.TilesY == 0 {
		opts.TilesY = 1
	}
	if opts.Multisample == 0 {
		opts.Multisample = 1
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = kernel.DefaultMaxDepth
	}

	var scheduler tracer.SampleScheduler
	if opts.FrameBudget > 0 {
		scheduler = tracer.NewAdaptiveScheduler(opts.FrameBudget, opts.SamplesPerFrame)
	} else {
		scheduler = tracer.NewFixedScheduler(opts.SamplesPerFrame)
	}

	return &Controller{
		logger:    log.New("frame controller"),
		tracer:    tr,
		scheduler: scheduler,
		opts:      opts,
		camera:    scene.NewCamera(45),
		state:     Idle,
		pending:   Resize | CameraChanged,
	}, nil
}

// Shutdown the controller and its tracer.
func (c *Controller) Close() {
	c.tracer.Close()
}

// Get the controller state.
func (c *Controller) State() State {
	return c.state
}

// Get the number of samples accumulated for the current tile.
func (c *Controller) FrameCount() uint32 {
	return c.frameCount
}

// Get the current tile offset.
func (c *Controller) TileOffset() (uint32, uint32) {
	return c.tileX, c.tileY
}

// Get the tile grid dims.
func (c *Controller) Tiles() (uint32, uint32) {
	return c.opts.TilesX, c.opts.TilesY
}

// Get the tile dims.
func (c *Controller) FrameSize() (uint32, uint32) {
	return c.opts.FrameW, c.opts.FrameH
}

func (c *Controller) RenderMode() scene.RenderMode {
	return c.opts.RenderMode
}

func (c *Controller) Multisample() uint32 {
	return c.opts.Multisample
}

// Get the camera. Callers that modify the camera must post a CameraChanged
// event.
func (c *Controller) Camera() *scene.Camera {
	return c.camera
}

// Get the compiled world or nil if no valid world is set.
func (c *Controller) Compiled() *scene.Compiled {
	return c.compiled
}

// Register a callback for completed tiles.
func (c *Controller) OnTileComplete(cb TileCallback) {
	c.onTile = cb
}

// Feed an event into the state machine. Any event discards the accumulated
// samples and restarts the tile sequence; a TilesChanged event keeps the
// tile offset selected by the caller.
func (c *Controller) Post(ev Event) {
	c.pending |= ev
	c.frameCount = 0
	if ev&TilesChanged == 0 {
		c.tileX, c.tileY = 0, 0
	}

	prevState := c.state
	switch {
	case c.compiled == nil:
		c.state = Idle
	case ev&WorldChanged != 0:
		c.state = Ready
	case c.state != Ready:
		c.state = Accumulating
	}

	c.logger.Debugf("event %s: %s -> %s", ev, prevState, c.state)
}

// Compile a world and make it current. A world without primitives is not
// an error; the controller logs it and stays Idle until a valid world is
// set.
func (c *Controller) SetWorld(world *scene.World) error {
	compiled, err := compiler.Compile(world, c.opts.compilerOptions())
	if err != nil {
		if !errors.Is(err, compiler.ErrEmptyWorld) {
			return err
		}
		c.logger.Warning("world contains no primitives; skipping frames until a valid world is set")
		compiled = nil
	}

	c.compiled = compiled
	c.Post(WorldChanged)
	if compiled != nil {
		c.logger.Noticef("world revision %s ready (%d primitives, %d bvh nodes)", compiled.Revision, len(compiled.Primitives), len(compiled.BvhNodes))
	}
	return nil
}

// Set the camera.
func (c *Controller) SetCamera(camera *scene.Camera) {
	c.camera = camera
	c.Post(CameraChanged)
}

// Set the tile dims.
func (c *Controller) SetFrameSize(frameW, frameH uint32) error {
	if frameW == 0 || frameH == 0 {
		return ErrInvalidFrame
	}
	c.opts.FrameW, c.opts.FrameH = frameW, frameH
	c.Post(Resize)
	return nil
}

func (c *Controller) SetRenderMode(mode scene.RenderMode) {
	c.opts.RenderMode = mode
	c.Post(RenderModeChanged)
}

func (c *Controller) SetMultisample(multisample uint32) {
	if multisample == 0 {
		multisample = 1
	}
	c.opts.Multisample = multisample
	c.Post(MultisampleChanged)
}

// Set the tile grid and restart from the first tile.
func (c *Controller) SetTiles(tilesX, tilesY uint32) error {
	if tilesX == 0 || tilesY == 0 {
		return fmt.Errorf("%w: %dx%d tiles", ErrInvalidTiles, tilesX, tilesY)
	}
	c.opts.TilesX, c.opts.TilesY = tilesX, tilesY
	c.tileX, c.tileY = 0, 0
	c.Post(TilesChanged)
	return nil
}

// Select the tile to render.
func (c *Controller) SetTileOffset(tileX, tileY uint32) error {
	if tileX >= c.opts.TilesX || tileY >= c.opts.TilesY {
		return fmt.Errorf("%w: tile (%d, %d) outside %dx%d grid", ErrInvalidTiles, tileX, tileY, c.opts.TilesX, c.opts.TilesY)
	}
	c.tileX, c.tileY = tileX, tileY
	c.Post(TilesChanged)
	return nil
}

// Get the number of samples each tile accumulates; 0 means unbounded.
func (c *Controller) TargetSamples() uint32 {
	if !c.opts.RenderMode.IsProgressive() {
		return 1
	}
	return c.opts.SamplesPerPixel
}

// Render one frame: apply pending changes, dispatch the next batch of
// samples for the current tile and wait for it to complete. Frames are
// skipped while Idle or Done. The elapsed time since the previous frame is
// only used for statistics.
func (c *Controller) RenderOneFrame(elapsed time.Duration) error {
	c.stats.Elapsed += elapsed

	if c.lost != nil {
		return c.lost
	}

	switch c.state {
	case Idle, Done:
		return nil
	case TileAdvance:
		c.advanceTile()
	}

	if err := c.applyPending(); err != nil {
		return c.fail(err)
	}
	c.state = Accumulating

	target := c.TargetSamples()
	remaining := ^uint32(0)
	if target != 0 {
		remaining = target - c.frameCount
	}
	samples := c.scheduler.Schedule(remaining, c.lastTrace)

	req := c.blockRequest(samples)
	if err := c.tracer.Trace(req); err != nil {
		return c.fail(err)
	}
	c.frameCount += samples

	trStats := *c.tracer.Stats()
	c.lastTrace = &trStats
	c.stats.Frames++
	c.stats.RenderTime += trStats.RenderTime
	c.stats.Tracer = trStats

	if target != 0 && c.frameCount >= target {
		return c.completeTile()
	}
	return nil
}

// Copy the resolved current tile into dst.
func (c *Controller) Framebuffer(dst []float32) error {
	if c.lost != nil {
		return c.lost
	}
	if c.compiled == nil {
		return ErrNoWorld
	}
	return c.tracer.SyncFramebuffer(dst)
}

// Get render statistics.
func (c *Controller) Stats() FrameStats {
	stats := c.stats
	stats.TracerId = c.tracer.Id()
	stats.State = c.state
	stats.TileX, stats.TileY = c.tileX, c.tileY
	stats.TilesX, stats.TilesY = c.opts.TilesX, c.opts.TilesY
	stats.FrameCount = c.frameCount
	stats.TargetSamples = c.TargetSamples()
	if c.compiled != nil {
		stats.Revision = c.compiled.Revision
	}
	return stats
}

// Apply the device side effects of pending events.
func (c *Controller) applyPending() error {
	if c.pending&Resize != 0 {
		if err := c.tracer.Init(c.opts.FrameW, c.opts.FrameH); err != nil {
			return err
		}
	}
	if c.pending&WorldChanged != 0 {
		if err := c.tracer.UpdateState(c.compiled); err != nil {
			return err
		}
	}
	if c.pending&(Resize|TilesChanged|CameraChanged) != 0 {
		fullW := float32(c.opts.TilesX * c.opts.FrameW)
		fullH := float32(c.opts.TilesY * c.opts.FrameH)
		c.camera.SetupProjection(fullW / fullH)
	}
	c.pending = 0
	return nil
}

func (c *Controller) blockRequest(samples uint32) *tracer.BlockRequest {
	return &tracer.BlockRequest{
		FrameW:          c.opts.FrameW,
		FrameH:          c.opts.FrameH,
		TilesX:          c.opts.TilesX,
		TilesY:          c.opts.TilesY,
		TileOffsetX:     c.tileX,
		TileOffsetY:     c.tileY,
		Eye:             c.camera.Position,
		Frustum:         c.camera.Frustum,
		FrameCount:      c.frameCount,
		SamplesPerPixel: samples,
		RenderMode:      c.opts.RenderMode,
		Multisample:     c.opts.Multisample,
		MaxDepth:        c.opts.MaxDepth,
		Exposure:        c.opts.Exposure,
	}
}

// Report the completed tile and move to TileAdvance or Done.
func (c *Controller) completeTile() error {
	if c.onTile != nil {
		tile := &Tile{
			X:       c.tileX,
			Y:       c.tileY,
			Width:   c.opts.FrameW,
			Height:  c.opts.FrameH,
			Samples: c.frameCount,
			Pixels:  make([]float32, 4*c.opts.FrameW*c.opts.FrameH),
		}
		if err := c.tracer.SyncFramebuffer(tile.Pixels); err != nil {
			return c.fail(err)
		}
		c.onTile(tile)
	}

	lastTile := c.tileX+1 == c.opts.TilesX && c.tileY+1 == c.opts.TilesY
	if lastTile {
		c.state = Done
		c.logger.Noticef("completed %d tile(s) with %d samples per pixel", c.opts.TilesX*c.opts.TilesY, c.frameCount)
	} else {
		c.state = TileAdvance
		c.logger.Infof("completed tile (%d, %d) with %d samples per pixel", c.tileX, c.tileY, c.frameCount)
	}
	return nil
}

// Move to the next tile in row-major order.
func (c *Controller) advanceTile() {
	c.tileX++
	if c.tileX >= c.opts.TilesX {
		c.tileX = 0
		c.tileY++
	}
	c.frameCount = 0
	c.logger.Debugf("advancing to tile (%d, %d)", c.tileX, c.tileY)
}

// Surface device loss as a fatal error.
func (c *Controller) fail(err error) error {
	if !errors.Is(err, device.ErrDeviceLost) {
		return err
	}
	c.lost = fmt.Errorf("%w: %w", ErrDeviceLost, err)
	c.logger.Errorf("%v", c.lost)
	return c.lost
}
