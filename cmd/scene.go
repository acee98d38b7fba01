package cmd

import (
	"errors"
	"strings"

	"github.com/microsoft/morphcharts-sub000/asset/compiler"
	"github.com/microsoft/morphcharts-sub000/asset/compiler/bvh"
	"github.com/microsoft/morphcharts-sub000/asset/scene/reader"
	"github.com/urfave/cli"
)

// Get the scene argument: a json world file or a demo scene name.
func sceneArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() != 1 {
		return "", errors.New("missing scene argument; expected a .json scene file or one of the demo scenes: " + strings.Join(reader.DemoNames(), ", "))
	}
	return ctx.Args().First(), nil
}

// Compile a scene and display its statistics.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	sceneFile, err := sceneArg(ctx)
	if err != nil {
		return err
	}

	strategy, err := bvh.ParseSplitStrategy(ctx.String("split"))
	if err != nil {
		return err
	}

	sc, err := reader.ReadScene(sceneFile)
	if err != nil {
		return err
	}

	compiled, err := compiler.Compile(sc.World, compiler.Options{
		MaxPrimsInNode: ctx.Int("max-prims"),
		SplitStrategy:  strategy,
	})
	if err != nil {
		return err
	}

	logger.Noticef("scene information:\n%s", compiled.Stats())
	return nil
}
