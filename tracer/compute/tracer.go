// Package compute implements a tracer that renders tiles by dispatching the
// path tracing kernels on a compute device.
package compute

import (
	"fmt"
	"sync"
	"time"

	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/log"
	"github.com/microsoft/morphcharts-sub000/tracer"
	"github.com/microsoft/morphcharts-sub000/tracer/device"
)

type Tracer struct {
	logger log.Logger

	sync.Mutex

	// The device associated with this tracer instance.
	device *device.Device

	// The allocated device resources.
	resources *deviceResources

	// The tracer id.
	id string

	// The tracer rendering pipeline.
	pipeline *Pipeline

	// The allocated tile dims.
	frameW uint32
	frameH uint32

	// The uploaded compiled scene.
	sceneData *scene.Compiled

	// Time spent uploading scene data since the last request.
	pendingUpdateTime time.Duration

	// Statistics for last processed request.
	stats *tracer.Stats
}

// Create a new tracer that runs the given pipeline on a device. If pipeline
// is nil the default pipeline is used.
func NewTracer(id string, dev *device.Device, pipeline *Pipeline) *Tracer {
	if pipeline == nil {
		pipeline = DefaultPipeline()
	}
	return &Tracer{
		logger:   log.New(fmt.Sprintf("tracer (%s)", id)),
		device:   dev,
		id:       id,
		pipeline: pipeline,
		stats:    &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Get the device used by this tracer.
func (tr *Tracer) Device() *device.Device {
	return tr.device
}

// Initialize tracer and allocate tile buffers. Re-initializing with new
// dims resizes the tile buffers and keeps the uploaded scene.
func (tr *Tracer) Init(frameW, frameH uint32) error {
	tr.Lock()
	defer tr.Unlock()

	if frameW == 0 || frameH == 0 {
		return ErrInvalidFrameSize
	}

	if tr.resources != nil {
		if frameW == tr.frameW && frameH == tr.frameH {
			return nil
		}
		tr.logger.Debugf("resizing tile buffers to %dx%d", frameW, frameH)
		if err := tr.resources.buffers.Resize(frameW, frameH); err != nil {
			return err
		}
		tr.frameW, tr.frameH = frameW, frameH
		return nil
	}

	err := tr.device.Init()
	if err != nil {
		return err
	}

	tr.resources, err = newDeviceResources(frameW, frameH, tr.device)
	if err != nil {
		return err
	}
	tr.frameW, tr.frameH = frameW, frameH

	// Re-upload scene data that was set before a Close
	if tr.sceneData != nil {
		if err = tr.resources.buffers.UploadSceneData(tr.sceneData); err != nil {
			tr.cleanup()
			return err
		}
	}

	tr.logger.Debugf("allocated buffers for %dx%d tiles", frameW, frameH)
	return nil
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	tr.cleanup()
}

// Cleanup tracer. This method is meant to be called while holding tr.Lock()
func (tr *Tracer) cleanup() {
	if tr.resources != nil {
		tr.resources.Close()
		tr.resources = nil
	}
	tr.frameW, tr.frameH = 0, 0
}

// Upload a compiled scene.
func (tr *Tracer) UpdateState(sc *scene.Compiled) error {
	tr.Lock()
	defer tr.Unlock()

	if sc == nil {
		return ErrNoSceneData
	}
	if tr.resources == nil {
		return ErrNotInitialized
	}

	start := time.Now()
	if err := tr.resources.buffers.UploadSceneData(sc); err != nil {
		return err
	}
	tr.sceneData = sc
	tr.pendingUpdateTime += time.Since(start)

	tr.logger.Debugf("uploaded scene revision %s (%d primitives, %d lights)", sc.Revision, len(sc.Primitives), sc.LightCount())
	return nil
}

// Process a block request and wait for it to complete.
func (tr *Tracer) Trace(req *tracer.BlockRequest) error {
	tr.Lock()
	defer tr.Unlock()

	if tr.resources == nil {
		return ErrNotInitialized
	}
	if tr.sceneData == nil {
		return ErrNoSceneData
	}
	if req.FrameW != tr.frameW || req.FrameH != tr.frameH {
		return fmt.Errorf("%w: requested %dx%d; allocated %dx%d", ErrFrameSizeMismatch, req.FrameW, req.FrameH, tr.frameW, tr.frameH)
	}

	start := time.Now()
	stats := tracer.Stats{
		UpdateTime:         tr.pendingUpdateTime,
		Samples:            req.SamplesPerPixel,
		AccumulatedSamples: req.AccumulatedSamples(),
	}
	tr.pendingUpdateTime = 0

	err := tr.resources.UploadUniforms(req, tr.sceneData)
	if err != nil {
		return err
	}

	// Execute pipeline
	if req.FrameCount == 0 {
		for _, stage := range tr.pipeline.Reset {
			stageTime, err := stage(tr, req)
			if err != nil {
				return err
			}
			stats.ResetTime += stageTime
		}
	}
	if tr.pipeline.Integrator != nil {
		if stats.IntegrateTime, err = tr.pipeline.Integrator(tr, req); err != nil {
			return err
		}
	}
	for _, stage := range tr.pipeline.PostProcess {
		stageTime, err := stage(tr, req)
		if err != nil {
			return err
		}
		stats.PostProcessTime += stageTime
	}

	stats.RenderTime = time.Since(start)
	*tr.stats = stats
	return nil
}

// Copy the resolved tile into dst.
func (tr *Tracer) SyncFramebuffer(dst []float32) error {
	tr.Lock()
	defer tr.Unlock()

	if tr.resources == nil {
		return ErrNotInitialized
	}
	size := int(4 * tr.frameW * tr.frameH)
	if len(dst) < size {
		return fmt.Errorf("%w: need %d values; got %d", ErrFramebufferTooSmall, size, len(dst))
	}
	return tr.resources.buffers.FrameBuffer.ReadData(0, 0, 0, dst)
}

// Retrieve last request statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}
