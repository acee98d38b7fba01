package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

// A world compiled into a form that can be uploaded to a compute device.
// Compiled scenes are immutable; a world change produces a new Compiled
// instance with a new revision.
type Compiled struct {
	// A unique id for this compilation.
	Revision uuid.UUID

	// The world this scene was compiled from.
	World *World

	// Primitives reordered so that each BVH leaf addresses a contiguous
	// range.
	Primitives []Primitive
	BvhNodes   []BvhNode

	// Encoded records.
	PrimitiveData []byte
	LightData     []byte
	BvhNodeData   []byte

	Bounds Bounds
}

// Get the number of encoded lights.
func (sc *Compiled) LightCount() int {
	if sc.World == nil {
		return 0
	}
	return len(sc.World.Lights)
}

// Build a tabular representation of scene statistics.
func (sc *Compiled) Stats() string {
	var imageData, atlasData []float32
	if sc.World != nil {
		if sc.World.Image != nil {
			imageData = sc.World.Image.Data
		}
		if sc.World.Atlas != nil {
			atlasData = sc.World.Atlas.Data
		}
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetCaption(true, fmt.Sprintf("revision %s", sc.Revision))
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", "", fmtSize(sc.PrimitiveData, sc.BvhNodeData)})
	table.Append([]string{"", "Primitives", fmt.Sprint(len(sc.Primitives)), fmtSize(sc.PrimitiveData)})
	table.Append([]string{"", "BVH nodes", fmt.Sprint(len(sc.BvhNodes)), fmtSize(sc.BvhNodeData)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Lights", "---", fmt.Sprint(sc.LightCount()), fmtSize(sc.LightData)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Textures", "---", "", fmtSize(imageData, atlasData)})
	table.Append([]string{"", "Image", "", fmtSize(imageData)})
	table.Append([]string{"", "SDF atlas", "", fmtSize(atlasData)})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.PrimitiveData, sc.BvhNodeData, sc.LightData, imageData, atlasData), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
