package main

import (
	"fmt"
	"os"

	"github.com/microsoft/morphcharts-sub000/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	bvhFlags := []cli.Flag{
		cli.IntFlag{
			Name:  "max-prims",
			Value: 4,
			Usage: "max number of primitives in a BVH leaf",
		},
		cli.StringFlag{
			Name:  "split",
			Value: "sah",
			Usage: "BVH split strategy (sah or median)",
		},
	}

	app := cli.NewApp()
	app.Name = "morphcharts"
	app.Usage = "path trace chart scenes built from analytic and SDF primitives"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringSliceFlag{
			Name:  "log-module",
			Value: &cli.StringSlice{},
			Usage: `set the verbosity of a single logger, e.g. "frame controller=debug"`,
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "scene-info",
			Usage: "compile a scene and display its statistics",
			Description: `
Load a scene from a json world file or build one of the demo scenes, build a
BVH over its primitives and display the compiled scene statistics.`,
			ArgsUsage: "scene_file.json | demo_name",
			Flags:     bvhFlags,
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:   "list-devices",
			Usage:  "list available compute devices",
			Action: cmd.ListDevices,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Render a single frame and write it to a png file. The frame is split into a
grid of tiles which are rendered one after the other until each reaches the
requested number of samples per pixel.`,
					ArgsUsage: "scene_file.json | demo_name",
					Flags: append([]cli.Flag{
						cli.IntFlag{
							Name:  "width",
							Value: 512,
							Usage: "frame width",
						},
						cli.IntFlag{
							Name:  "height",
							Value: 512,
							Usage: "frame height",
						},
						cli.IntFlag{
							Name:  "tiles-x",
							Value: 1,
							Usage: "number of horizontal tiles",
						},
						cli.IntFlag{
							Name:  "tiles-y",
							Value: 1,
							Usage: "number of vertical tiles",
						},
						cli.IntFlag{
							Name:  "spp",
							Value: 64,
							Usage: "samples per pixel",
						},
						cli.IntFlag{
							Name:  "spf",
							Value: 1,
							Usage: "samples per pixel added by each dispatched frame",
						},
						cli.DurationFlag{
							Name:  "frame-budget",
							Usage: "adapt the samples added by each frame to fit this time budget",
						},
						cli.StringFlag{
							Name:  "mode, m",
							Value: "raytrace",
							Usage: "render mode (raytrace, hdr, color, normal, segment, texcoord or edge)",
						},
						cli.IntFlag{
							Name:  "multisample",
							Value: 1,
							Usage: "supersampling grid size for the color and edge modes",
						},
						cli.IntFlag{
							Name:  "max-depth",
							Value: 8,
							Usage: "max number of path bounces",
						},
						cli.Float64Flag{
							Name:  "exposure",
							Value: 1.0,
							Usage: "camera exposure for tone-mapping",
						},
						cli.StringFlag{
							Name:  "device, d",
							Usage: "use the first compute device whose name contains this value",
						},
						cli.IntFlag{
							Name:  "lanes",
							Usage: "number of device lanes; defaults to the number of CPUs",
						},
						cli.StringFlag{
							Name:  "debug-tiles",
							Usage: "write the tile framebuffer to this png file after each frame",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					}, bvhFlags...),
					Action: cmd.RenderFrame,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
