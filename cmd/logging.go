package cmd

import (
	"strings"

	"github.com/microsoft/morphcharts-sub000/log"
	"github.com/urfave/cli"
)

var logger = log.New("morphcharts")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}

	// Per-module overrides in "module=level" form
	for _, override := range ctx.GlobalStringSlice("log-module") {
		module, levelName, ok := strings.Cut(override, "=")
		if !ok {
			logger.Warningf(`ignoring log override "%s"; expected module=level`, override)
			continue
		}
		level, err := log.ParseLevel(levelName)
		if err != nil {
			logger.Warningf("ignoring log override for %s: %v", module, err)
			continue
		}
		log.SetModuleLevel(module, level)
	}
}
