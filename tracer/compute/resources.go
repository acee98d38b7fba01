package compute

import (
	"fmt"
	"time"

	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/scene/encoding"
	"github.com/microsoft/morphcharts-sub000/tracer"
	"github.com/microsoft/morphcharts-sub000/tracer/device"
)

// A container that stores handles to kernels and any allocated device buffers.
type deviceResources struct {
	// The allocated device buffers.
	buffers *bufferSet

	// The set of kernels.
	kernels []*device.Kernel
}

// Using the supplied device as a target, load all defined kernels and
// allocate tile buffers.
func newDeviceResources(frameW, frameH uint32, dev *device.Device) (*deviceResources, error) {
	var err error

	if dev == nil {
		return nil, fmt.Errorf("device resources: invalid device handle")
	}

	// Allocate buffers
	dr := &deviceResources{
		buffers: newBufferSet(dev),
	}
	if err = dr.buffers.Resize(frameW, frameH); err != nil {
		dr.Close()
		return nil, err
	}

	// Load all kernels
	dr.kernels = make([]*device.Kernel, numKernels)

	var kType kernelType
	for kType = 0; kType < numKernels; kType++ {
		dr.kernels[kType], err = dev.Kernel(kType.String())
		if err != nil {
			dr.Close()
			return nil, err
		}
	}

	return dr, nil
}

// Release all allocated resources.
func (dr *deviceResources) Close() {
	if dr.buffers != nil {
		dr.buffers.Release()
		dr.buffers = nil
	}

	if dr.kernels != nil {
		for _, kernel := range dr.kernels {
			if kernel != nil {
				kernel.Release()
			}
		}
		dr.kernels = nil
	}
}

// Encode the request parameters into the uniforms buffer.
func (dr *deviceResources) UploadUniforms(req *tracer.BlockRequest, sc *scene.Compiled) error {
	u := encoding.FrameUniforms{
		Eye:            req.Eye,
		Frustum:        req.Frustum,
		Width:          req.FrameW,
		Height:         req.FrameH,
		FrameCount:     req.FrameCount,
		Samples:        req.SamplesPerPixel,
		RenderMode:     req.RenderMode,
		TilesX:         req.TilesX,
		TilesY:         req.TilesY,
		TileOffsetX:    req.TileOffsetX,
		TileOffsetY:    req.TileOffsetY,
		Multisample:    req.Multisample,
		MaxDepth:       req.MaxDepth,
		PrimitiveCount: uint32(len(sc.Primitives)),
		LightCount:     uint32(sc.LightCount()),
		Exposure:       req.Exposure,
	}
	if sc.World != nil {
		u.Background = sc.World.Background
		u.Ambient = sc.World.Ambient.Vec4(0)
	}
	if req.RenderMode == scene.EdgeMode {
		u.Flags |= encoding.FlagOverdispatch
	}

	return dr.buffers.Uniforms.WriteData(encoding.EncodeUniforms(&u), 0)
}

// Clear accumulator and reset the tracked depth range.
func (dr *deviceResources) ClearAccumulator(req *tracer.BlockRequest) (time.Duration, error) {
	kernel := dr.kernels[clearAccumulator]
	numFloats := int(4 * req.FrameW * req.FrameH)

	err := kernel.SetArgs(
		dr.buffers.Accumulator,
		dr.buffers.DepthRange,
	)
	if err != nil {
		return 0, err
	}

	return kernel.Exec1D(0, numFloats, 0)
}

// Measure the depth range of the whole image. The dispatch covers every
// tile of the image so all tiles share the range.
func (dr *deviceResources) MeasureDepthRange(req *tracer.BlockRequest) (time.Duration, error) {
	kernel := dr.kernels[depthRange]
	bs := dr.buffers

	err := kernel.SetArgs(
		bs.Uniforms,
		bs.Primitives,
		bs.BvhNodes,
		bs.Lights,
		bs.Image,
		bs.imageW,
		bs.imageH,
		bs.Atlas,
		bs.atlasW,
		bs.atlasH,
		bs.DepthRange,
	)
	if err != nil {
		return 0, err
	}

	tilesX, tilesY := maxUint32(req.TilesX, 1), maxUint32(req.TilesY, 1)
	return kernel.Exec2D(0, 0, int(tilesX*req.FrameW), int(tilesY*req.FrameH), 0, 0)
}

// Trace the request samples for every tile pixel. In edge mode the
// dispatch covers a one pixel border around the tile and only fills the
// geometry buffer.
func (dr *deviceResources) Integrate(req *tracer.BlockRequest) (time.Duration, error) {
	kernel := dr.kernels[integrate]
	bs := dr.buffers

	err := kernel.SetArgs(
		bs.Uniforms,
		bs.Primitives,
		bs.BvhNodes,
		bs.Lights,
		bs.Image,
		bs.imageW,
		bs.imageH,
		bs.Atlas,
		bs.atlasW,
		bs.atlasH,
		bs.Accumulator,
		bs.GBuffer,
	)
	if err != nil {
		return 0, err
	}

	gridW, gridH := int(req.FrameW), int(req.FrameH)
	if req.RenderMode == scene.EdgeMode {
		gridW, gridH = gridW+2, gridH+2
	}
	return kernel.Exec2D(0, 0, gridW, gridH, 0, 0)
}

// Detect edges in the geometry buffer and accumulate them.
func (dr *deviceResources) EdgeDetect(req *tracer.BlockRequest) (time.Duration, error) {
	kernel := dr.kernels[edgeDetect]

	err := kernel.SetArgs(
		dr.buffers.Uniforms,
		dr.buffers.GBuffer,
		dr.buffers.Accumulator,
	)
	if err != nil {
		return 0, err
	}

	return kernel.Exec2D(0, 0, int(req.FrameW), int(req.FrameH), 0, 0)
}

// Resolve the accumulator into the frame buffer.
func (dr *deviceResources) Resolve(req *tracer.BlockRequest) (time.Duration, error) {
	kernel := dr.kernels[resolve]

	err := kernel.SetArgs(
		dr.buffers.Uniforms,
		dr.buffers.Accumulator,
		dr.buffers.DepthRange,
		dr.buffers.FrameBuffer,
		req.AccumulatedSamples(),
	)
	if err != nil {
		return 0, err
	}

	return kernel.Exec1D(0, int(req.FrameW*req.FrameH), 0)
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
