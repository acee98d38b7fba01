package compute

import (
	"reflect"

	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/scene/encoding"
	"github.com/microsoft/morphcharts-sub000/tracer/device"
)

// Size of buffer elements in bytes.
const (
	sizeofAccumulatorSample = 16 // float4
	sizeofFrameBufferPixel  = 16 // float4
	sizeofDepthRange        = 8  // 2 x uint32
	sizeofGBufferEntry      = 4 * 8
)

type bufferSet struct {
	// Per-request frame parameters.
	Uniforms *device.Buffer

	// Scene data.
	Primitives *device.Buffer
	BvhNodes   *device.Buffer
	Lights     *device.Buffer
	Image      *device.Buffer
	Atlas      *device.Buffer

	// Tile data.
	Accumulator *device.Buffer
	DepthRange  *device.Buffer
	GBuffer     *device.Buffer
	FrameBuffer *device.Buffer

	// Texture dims for the uploaded image and atlas.
	imageW, imageH uint32
	atlasW, atlasH uint32
}

// Allocate new buffer set.
func newBufferSet(dev *device.Device) *bufferSet {
	return &bufferSet{
		Uniforms: dev.Buffer("uniforms"),
		// Scene data
		Primitives: dev.Buffer("primitives"),
		BvhNodes:   dev.Buffer("bvhNodes"),
		Lights:     dev.Buffer("lights"),
		Image:      dev.Buffer("image"),
		Atlas:      dev.Buffer("atlas"),
		// Tile data
		Accumulator: dev.Buffer("accumulator"),
		DepthRange:  dev.Buffer("depthRange"),
		GBuffer:     dev.Buffer("gBuffer"),
		FrameBuffer: dev.Buffer("frameBuffer"),
	}
}

// Release all buffers.
func (bs *bufferSet) Release() {
	reflVal := reflect.ValueOf(*bs)
	for fieldIndex := 0; fieldIndex < reflVal.NumField(); fieldIndex++ {
		field := reflVal.Field(fieldIndex)
		if !field.CanInterface() {
			continue
		}
		if buf, ok := field.Interface().(*device.Buffer); ok && buf != nil {
			buf.Release()
		}
	}
}

// Resize tile-related buffers to the given tile dimensions. The geometry
// buffer covers the tile plus a one pixel border.
func (bs *bufferSet) Resize(frameW, frameH uint32) error {
	var err error
	pixels := int(frameW * frameH)

	if err = bs.Uniforms.Allocate(encoding.UniformsStride); err != nil {
		return err
	}
	if err = bs.Accumulator.Allocate(pixels * sizeofAccumulatorSample); err != nil {
		return err
	}
	if err = bs.DepthRange.Allocate(sizeofDepthRange); err != nil {
		return err
	}
	if err = bs.GBuffer.Allocate(int((frameW+2)*(frameH+2)) * sizeofGBufferEntry); err != nil {
		return err
	}
	return bs.FrameBuffer.Allocate(pixels * sizeofFrameBufferPixel)
}

// Upload the encoded scene records and textures.
func (bs *bufferSet) UploadSceneData(sc *scene.Compiled) error {
	var err error

	if err = bs.Primitives.AllocateAndWriteData(sc.PrimitiveData); err != nil {
		return err
	}
	if err = bs.BvhNodes.AllocateAndWriteData(sc.BvhNodeData); err != nil {
		return err
	}
	if err = bs.Lights.AllocateAndWriteData(sc.LightData); err != nil {
		return err
	}

	bs.imageW, bs.imageH = 0, 0
	bs.atlasW, bs.atlasH = 0, 0
	var imageData, atlasData []float32
	if sc.World != nil && sc.World.Image != nil {
		imageData = sc.World.Image.Data
		bs.imageW, bs.imageH = sc.World.Image.Width, sc.World.Image.Height
	}
	if sc.World != nil && sc.World.Atlas != nil {
		atlasData = sc.World.Atlas.Data
		bs.atlasW, bs.atlasH = sc.World.Atlas.Width, sc.World.Atlas.Height
	}
	if err = bs.Image.AllocateAndWriteData(imageData); err != nil {
		return err
	}
	return bs.Atlas.AllocateAndWriteData(atlasData)
}
