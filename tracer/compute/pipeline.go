package compute

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/tracer"
)

// An alias for functions that can be used as part of the rendering pipeline.
type PipelineStage func(tr *Tracer, req *tracer.BlockRequest) (time.Duration, error)

// The list of pluggable stages that are used to render a tile.
type Pipeline struct {
	// Reset the tile state. These stages are executed whenever a request
	// starts a fresh accumulation (its frame count is 0).
	Reset []PipelineStage

	// Trace the request samples and add their contribution into the
	// accumulation buffer.
	Integrator PipelineStage

	// A set of post-processing stages that are executed after
	// integration. The last stage normally resolves the accumulator into
	// the frame buffer.
	PostProcess []PipelineStage
}

// Get the default pipeline: clear, measure depths, integrate, detect edges
// and resolve.
func DefaultPipeline() *Pipeline {
	return &Pipeline{
		Reset: []PipelineStage{
			ClearAccumulator(),
			DepthRange(),
		},
		Integrator: Integrator(),
		PostProcess: []PipelineStage{
			EdgeDetection(),
			Resolve(),
		},
	}
}

// Clear the accumulator and depth range buffers.
func ClearAccumulator() PipelineStage {
	return func(tr *Tracer, req *tracer.BlockRequest) (time.Duration, error) {
		return tr.resources.ClearAccumulator(req)
	}
}

// Measure the depth range of the whole image. This stage only runs in
// normal mode and must follow ClearAccumulator.
func DepthRange() PipelineStage {
	return func(tr *Tracer, req *tracer.BlockRequest) (time.Duration, error) {
		if req.RenderMode != scene.NormalMode {
			return 0, nil
		}
		return tr.resources.MeasureDepthRange(req)
	}
}

// Run the integrator kernel for the request render mode.
func Integrator() PipelineStage {
	return func(tr *Tracer, req *tracer.BlockRequest) (time.Duration, error) {
		return tr.resources.Integrate(req)
	}
}

// Convert geometry buffer discontinuities into edge samples. This stage
// only runs in edge mode.
func EdgeDetection() PipelineStage {
	return func(tr *Tracer, req *tracer.BlockRequest) (time.Duration, error) {
		if req.RenderMode != scene.EdgeMode {
			return 0, nil
		}
		return tr.resources.EdgeDetect(req)
	}
}

// Average the accumulated samples and apply the mode specific mapping.
func Resolve() PipelineStage {
	return func(tr *Tracer, req *tracer.BlockRequest) (time.Duration, error) {
		return tr.resources.Resolve(req)
	}
}

// Dump a copy of the resolved frame buffer to a png file.
func DebugFrameBuffer(imgFile string) PipelineStage {
	return func(tr *Tracer, req *tracer.BlockRequest) (time.Duration, error) {
		start := time.Now()

		pixels := make([]float32, 4*req.FrameW*req.FrameH)
		err := tr.resources.buffers.FrameBuffer.ReadData(0, 0, 0, pixels)
		if err != nil {
			return 0, err
		}

		f, err := os.Create(imgFile)
		if err != nil {
			return 0, err
		}
		defer f.Close()

		return time.Since(start), png.Encode(f, FrameBufferImage(pixels, int(req.FrameW), int(req.FrameH)))
	}
}

// Convert resolved RGBA float32 pixels into an 8-bit image.
func FrameBufferImage(pixels []float32, width, height int) *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := pixels[(y*width+x)*4:][:4]
			im.SetNRGBA(x, y, color.NRGBA{
				R: toByte(p[0]),
				G: toByte(p[1]),
				B: toByte(p[2]),
				A: toByte(p[3]),
			})
		}
	}
	return im
}

func toByte(v float32) uint8 {
	return uint8(math32.Round(math32.Min(math32.Max(v, 0), 1) * 255))
}
