package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/microsoft/morphcharts-sub000/asset/compiler/bvh"
	"github.com/microsoft/morphcharts-sub000/asset/scene"
	"github.com/microsoft/morphcharts-sub000/asset/scene/reader"
	"github.com/microsoft/morphcharts-sub000/renderer"
	"github.com/microsoft/morphcharts-sub000/tracer/compute"
	"github.com/microsoft/morphcharts-sub000/tracer/device"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"golang.org/x/image/draw"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := renderOptions(ctx)
	if err != nil {
		return err
	}
	if opts.SamplesPerPixel == 0 {
		return errors.New("spp must be greater than 0 when rendering a still frame")
	}

	sceneFile, err := sceneArg(ctx)
	if err != nil {
		return err
	}
	sc, err := reader.ReadScene(sceneFile)
	if err != nil {
		return err
	}

	devices, err := device.SelectDevices(device.AllDevices, ctx.String("device"))
	if err != nil {
		return err
	}
	dev := devices[0]
	if lanes := ctx.Int("lanes"); lanes > 0 {
		dev.Lanes = lanes
	}
	logger.Infof(`using device "%s" with %d lanes`, dev.Name, dev.Lanes)

	var pipeline *compute.Pipeline
	if debugFile := ctx.String("debug-tiles"); debugFile != "" {
		pipeline = compute.DefaultPipeline()
		pipeline.PostProcess = append(pipeline.PostProcess, compute.DebugFrameBuffer(debugFile))
	}

	ctrl, err := renderer.NewController(compute.NewTracer(dev.Name, dev, pipeline), opts)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	// Stitch completed tiles into the output image
	frame := image.NewNRGBA(image.Rect(0, 0, int(opts.TilesX*opts.FrameW), int(opts.TilesY*opts.FrameH)))
	ctrl.OnTileComplete(func(tile *renderer.Tile) {
		tileImg := compute.FrameBufferImage(tile.Pixels, int(tile.Width), int(tile.Height))
		origin := image.Pt(int(tile.X*tile.Width), int(tile.Y*tile.Height))
		draw.Copy(frame, origin, tileImg, tileImg.Bounds(), draw.Src, nil)
		logger.Infof("tile (%d, %d) complete with %d spp", tile.X, tile.Y, tile.Samples)
	})

	ctrl.SetCamera(sc.Camera)
	if err = ctrl.SetWorld(sc.World); err != nil {
		return err
	}
	if ctrl.State() == renderer.Idle {
		return errors.New("scene does not contain any primitives")
	}

	logger.Noticef("rendering %dx%d frame (%s mode, %d spp)", frame.Rect.Dx(), frame.Rect.Dy(), opts.RenderMode, ctrl.TargetSamples())
	start := time.Now()
	last := start
	for ctrl.State() != renderer.Done {
		now := time.Now()
		if err = ctrl.RenderOneFrame(now.Sub(last)); err != nil {
			return err
		}
		last = now
	}
	logger.Noticef("rendered frame in %d ms", time.Since(start).Nanoseconds()/1e6)

	if err = writePNG(ctx.String("out"), frame); err != nil {
		return err
	}

	displayFrameStats(ctrl.Stats())
	return nil
}

// Build renderer options from the command flags.
func renderOptions(ctx *cli.Context) (renderer.Options, error) {
	opts := renderer.DefaultOptions()
	opts.FrameW = uint32(ctx.Int("width"))
	opts.FrameH = uint32(ctx.Int("height"))
	opts.TilesX = uint32(ctx.Int("tiles-x"))
	opts.TilesY = uint32(ctx.Int("tiles-y"))
	opts.SamplesPerPixel = uint32(ctx.Int("spp"))
	opts.SamplesPerFrame = uint32(ctx.Int("spf"))
	opts.FrameBudget = ctx.Duration("frame-budget")
	opts.Multisample = uint32(ctx.Int("multisample"))
	opts.MaxDepth = uint32(ctx.Int("max-depth"))
	opts.Exposure = float32(ctx.Float64("exposure"))
	opts.MaxPrimsInNode = ctx.Int("max-prims")

	if opts.TilesX == 0 || opts.TilesY == 0 || opts.FrameW%opts.TilesX != 0 || opts.FrameH%opts.TilesY != 0 {
		return opts, fmt.Errorf("frame size %dx%d cannot be split into %dx%d tiles", opts.FrameW, opts.FrameH, opts.TilesX, opts.TilesY)
	}
	opts.FrameW /= opts.TilesX
	opts.FrameH /= opts.TilesY

	var err error
	if opts.RenderMode, err = scene.ParseRenderMode(ctx.String("mode")); err != nil {
		return opts, err
	}
	if opts.SplitStrategy, err = bvh.ParseSplitStrategy(ctx.String("split")); err != nil {
		return opts, err
	}
	return opts, nil
}

func writePNG(imgFile string, frame image.Image) error {
	start := time.Now()
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = png.Encode(f, frame); err != nil {
		return fmt.Errorf("could not encode png file: %w", err)
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1e6)
	return nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Tiles", "Frames", "Samples/pixel", "Integrate", "Post process", "Render time"})
	table.Append([]string{
		stats.TracerId,
		fmt.Sprintf("%dx%d", stats.TilesX, stats.TilesY),
		fmt.Sprintf("%d", stats.Frames),
		fmt.Sprintf("%d", stats.TargetSamples),
		stats.Tracer.IntegrateTime.String(),
		stats.Tracer.PostProcessTime.String(),
		stats.Tracer.RenderTime.String(),
	})
	table.SetFooter([]string{"", "", "", "", "", "TOTAL", stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics (scene revision %s)\n%s", stats.Revision, buf.String())
}
