package kernel

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/scene/encoding"
	"github.com/microsoft/morphcharts-sub000/tracer/device"
	"github.com/microsoft/morphcharts-sub000/types"
)

// Registered kernel names.
const (
	// Args: accumulator, depth range. 1D over the accumulator floats.
	ClearAccumulator = "clearAccumulator"

	// Args: uniforms, primitives, bvh nodes, lights, image, image width,
	// image height, atlas, atlas width, atlas height, depth range. 2D over
	// the pixels of the whole image, not just the tile.
	DepthRange = "depthRange"

	// Args: uniforms, primitives, bvh nodes, lights, image, image width,
	// image height, atlas, atlas width, atlas height, accumulator,
	// geometry buffer. 2D over the tile pixels; with the over-dispatch
	// flag set the grid grows by one pixel on each side.
	Integrate = "integrate"

	// Args: uniforms, geometry buffer, accumulator. 2D over the tile
	// pixels.
	EdgeDetect = "edgeDetect"

	// Args: uniforms, accumulator, depth range, output, sample count. 1D
	// over the tile pixels.
	Resolve = "resolve"
)

// Inverse of the display gamma applied on resolve.
const invGamma float32 = 1 / 2.2

func init() {
	device.RegisterKernel(ClearAccumulator, clearAccumulatorKernel)
	device.RegisterKernel(DepthRange, depthRangeKernel)
	device.RegisterKernel(Integrate, integrateKernel)
	device.RegisterKernel(EdgeDetect, edgeDetectKernel)
	device.RegisterKernel(Resolve, resolveKernel)
}

func decodeUniformsView(data []byte) interface{} {
	u := encoding.DecodeUniforms(data)
	return &u
}

func uniformsArg(args []interface{}, index int) (*encoding.FrameUniforms, error) {
	buf, err := device.BufferArg(args, index)
	if err != nil {
		return nil, err
	}
	if buf.Size() < encoding.UniformsStride {
		return nil, fmt.Errorf("argument %d: uniforms buffer too small (%d bytes)", index, buf.Size())
	}
	return buf.View(decodeUniformsView).(*encoding.FrameUniforms), nil
}

func bufferArgs(args []interface{}, indices ...int) ([]*device.Buffer, error) {
	bufs := make([]*device.Buffer, len(indices))
	for i, index := range indices {
		buf, err := device.BufferArg(args, index)
		if err != nil {
			return nil, err
		}
		bufs[i] = buf
	}
	return bufs, nil
}

func uint32Args(args []interface{}, indices ...int) ([]uint32, error) {
	values := make([]uint32, len(indices))
	for i, index := range indices {
		v, err := device.Uint32Arg(args, index)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func clearAccumulatorKernel(args []interface{}) (device.Invocation, error) {
	bufs, err := bufferArgs(args, 0, 1)
	if err != nil {
		return nil, err
	}
	accum := bufs[0].Float32s()
	depthRange := bufs[1].Uint32s()
	if len(depthRange) < 2 {
		return nil, fmt.Errorf("depth range buffer too small (%d bytes)", bufs[1].Size())
	}

	return func(x, _ int) {
		if x < len(accum) {
			accum[x] = 0
		}
		if x == 0 {
			depthRange[0] = math.Float32bits(math32.Inf(1))
			depthRange[1] = 0
		}
	}, nil
}

// Bind the scene buffers shared by the tracing kernels. Extra buffer
// arguments following the atlas dimensions are returned in order.
func worldArgs(args []interface{}, extra ...int) (*World, []*device.Buffer, error) {
	u, err := uniformsArg(args, 0)
	if err != nil {
		return nil, nil, err
	}
	bufs, err := bufferArgs(args, append([]int{1, 2, 3, 4, 7}, extra...)...)
	if err != nil {
		return nil, nil, err
	}
	dims, err := uint32Args(args, 5, 6, 8, 9)
	if err != nil {
		return nil, nil, err
	}

	world := worldFromBuffers(u, bufs[0], bufs[1], bufs[2], bufs[3], dims[0], dims[1], bufs[4], dims[2], dims[3])
	if len(world.Nodes) == 0 || len(world.Primitives) == 0 {
		return nil, nil, fmt.Errorf("no scene geometry bound")
	}
	return world, bufs[5:], nil
}

// Track the depth range of the center ray hits over the whole image so
// that every tile normalizes its depths against the same range.
func depthRangeKernel(args []interface{}) (device.Invocation, error) {
	u, err := uniformsArg(args, 0)
	if err != nil {
		return nil, err
	}
	world, bufs, err := worldArgs(args, 10)
	if err != nil {
		return nil, err
	}
	depthRange := bufs[0].Uint32s()
	if len(depthRange) < 2 {
		return nil, fmt.Errorf("depth range buffer too small (%d bytes)", bufs[0].Size())
	}

	cam := newCamera(u)
	return func(x, y int) {
		if x >= cam.fullW || y >= cam.fullH {
			return
		}
		if c, hit := world.normalSample(cam.ray(x-cam.originX, y-cam.originY, 0.5, 0.5)); hit {
			updateDepthRange(depthRange, c[3])
		}
	}, nil
}

func integrateKernel(args []interface{}) (device.Invocation, error) {
	u, err := uniformsArg(args, 0)
	if err != nil {
		return nil, err
	}
	world, bufs, err := worldArgs(args, 10, 11)
	if err != nil {
		return nil, err
	}
	accum := bufs[0].Float32s()
	gbuf := bufs[1].Float32s()

	width, height := int(u.Width), int(u.Height)
	if len(accum) < 4*width*height {
		return nil, fmt.Errorf("accumulator too small for %dx%d tile", width, height)
	}

	overdispatch := u.Flags&encoding.FlagOverdispatch != 0
	gridW := width
	border := 0
	if overdispatch {
		gridW, border = width+2, 1
	}
	if u.RenderMode == scene.EdgeMode && len(gbuf) < GBufferStride*gridW*(height+2*border) {
		return nil, fmt.Errorf("geometry buffer too small for %dx%d tile", width, height)
	}

	cam := newCamera(u)
	maxDepth := int(u.MaxDepth)
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	samples := int(u.Samples)

	return func(x, y int) {
		px, py := x-border, y-border

		if u.RenderMode == scene.EdgeMode {
			entry := gbuf[(y*gridW+x)*GBufferStride:]
			world.geometrySample(cam.ray(px, py, 0.5, 0.5), entry)
			return
		}
		if px < 0 || py < 0 || px >= width || py >= height {
			return
		}

		acc := accum[(py*width+px)*4:][:4]
		addSample := func(c types.Vec4) {
			acc[0] += c[0]
			acc[1] += c[1]
			acc[2] += c[2]
			acc[3] += c[3]
		}

		switch u.RenderMode {
		case scene.RaytraceMode, scene.HDRMode:
			var rng Rng
			pixelIndex := cam.pixelIndex(px, py)
			for s := 0; s < samples; s++ {
				rng.Seed(pixelIndex, uint64(u.FrameCount)+uint64(s))
				r := cam.ray(px, py, rng.Float32(), rng.Float32())
				addSample(world.radiance(r, maxDepth, &rng))
			}
			return
		}

		var c types.Vec4
		center := cam.ray(px, py, 0.5, 0.5)
		switch u.RenderMode {
		case scene.ColorMode:
			c = world.multisampledColor(&cam, px, py, int(u.Multisample))
		case scene.NormalMode:
			c, _ = world.normalSample(center)
		case scene.SegmentMode:
			c = world.segmentSample(center)
		case scene.TexCoordMode:
			c = world.texCoordSample(center)
		}
		for s := 0; s < samples; s++ {
			addSample(c)
		}
	}, nil
}

func edgeDetectKernel(args []interface{}) (device.Invocation, error) {
	u, err := uniformsArg(args, 0)
	if err != nil {
		return nil, err
	}
	bufs, err := bufferArgs(args, 1, 2)
	if err != nil {
		return nil, err
	}
	gbuf := bufs[0].Float32s()
	accum := bufs[1].Float32s()

	width, height := int(u.Width), int(u.Height)
	stride := width + 2
	if len(gbuf) < GBufferStride*stride*(height+2) {
		return nil, fmt.Errorf("geometry buffer too small for %dx%d tile", width, height)
	}
	if len(accum) < 4*width*height {
		return nil, fmt.Errorf("accumulator too small for %dx%d tile", width, height)
	}
	samples := float32(u.Samples)

	return func(x, y int) {
		v := (1 - edgeAt(gbuf, stride, x+1, y+1)) * samples
		acc := accum[(y*width+x)*4:][:4]
		acc[0] += v
		acc[1] += v
		acc[2] += v
		acc[3] += samples
	}, nil
}

func resolveKernel(args []interface{}) (device.Invocation, error) {
	u, err := uniformsArg(args, 0)
	if err != nil {
		return nil, err
	}
	bufs, err := bufferArgs(args, 1, 2, 3)
	if err != nil {
		return nil, err
	}
	sampleCount, err := device.Uint32Arg(args, 4)
	if err != nil {
		return nil, err
	}
	accum := bufs[0].Float32s()
	depthRange := bufs[1].Uint32s()
	output := bufs[2].Float32s()

	pixels := int(u.Width * u.Height)
	if len(accum) < 4*pixels || len(output) < 4*pixels {
		return nil, fmt.Errorf("accumulator/output too small for %dx%d tile", u.Width, u.Height)
	}

	var minDepth, maxDepth float32
	if len(depthRange) >= 2 {
		minDepth = math.Float32frombits(depthRange[0])
		maxDepth = math.Float32frombits(depthRange[1])
	}

	scale := float32(0)
	if sampleCount > 0 {
		scale = 1 / float32(sampleCount)
	}

	return func(x, _ int) {
		if x >= pixels {
			return
		}
		acc := accum[x*4:][:4]
		c := types.Vec4{acc[0] * scale, acc[1] * scale, acc[2] * scale, acc[3] * scale}
		px := resolvePixel(u, c, minDepth, maxDepth)
		copy(output[x*4:][:4], px[:])
	}, nil
}

// Convert an averaged accumulator value into a display value.
func resolvePixel(u *encoding.FrameUniforms, c types.Vec4, minDepth, maxDepth float32) types.Vec4 {
	switch u.RenderMode {
	case scene.RaytraceMode:
		for i := 0; i < 3; i++ {
			v := math32.Max(c[i]*u.Exposure, 0)
			c[i] = math32.Pow(v/(1+v), invGamma)
		}
	case scene.HDRMode:
		for i := 0; i < 3; i++ {
			c[i] *= u.Exposure
		}
	case scene.ColorMode:
		for i := 0; i < 3; i++ {
			c[i] = math32.Pow(math32.Max(c[i], 0), invGamma)
		}
	case scene.NormalMode:
		switch {
		case c[3] < 0:
			c[3] = 1
		case maxDepth > minDepth:
			c[3] = clamp((c[3]-minDepth)/(maxDepth-minDepth), 0, 1)
		default:
			c[3] = 0
		}
	}
	return c
}
