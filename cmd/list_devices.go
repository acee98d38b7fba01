package cmd

import (
	"bytes"
	"fmt"

	"github.com/microsoft/morphcharts-sub000/tracer/device"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List available compute devices.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	devices := device.ListDevices()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Name", "Type", "Lanes", "Speed"})
	for dIdx, dev := range devices {
		table.Append([]string{
			fmt.Sprintf("%02d", dIdx),
			dev.Name,
			dev.Type.String(),
			fmt.Sprintf("%d", dev.Lanes),
			fmt.Sprintf("%d", dev.Speed),
		})
	}
	table.Render()

	logger.Noticef("system provides %d compute device(s)\n%s", len(devices), buf.String())
	return nil
}
