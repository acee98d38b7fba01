package scene

import (
	"fmt"
	"strings"
)

// Selects what each sample accumulates.
type RenderMode uint32

const (
	// Full path traced radiance, tone mapped on resolve.
	RaytraceMode RenderMode = iota

	// Full path traced radiance, resolved without tone mapping.
	HDRMode

	// Direct lighting only with a specular highlight, supersampled over
	// an AA x AA grid.
	ColorMode

	// Normal and linear depth.
	NormalMode

	// Hit primitive segment color.
	SegmentMode

	// Raw hit UVs.
	TexCoordMode

	// Discontinuity edges between segments, normals and depth.
	EdgeMode

	NumRenderModes
)

var renderModeNames = [NumRenderModes]string{
	"raytrace", "hdr", "color", "normal", "segment", "texcoord", "edge",
}

func (m RenderMode) String() string {
	if m < NumRenderModes {
		return renderModeNames[m]
	}
	return fmt.Sprintf("renderMode(%d)", uint32(m))
}

// Returns true if the mode accumulates path traced radiance.
func (m RenderMode) IsProgressive() bool {
	return m == RaytraceMode || m == HDRMode
}

// Parse a render mode from its name.
func ParseRenderMode(name string) (RenderMode, error) {
	for index, modeName := range renderModeNames {
		if strings.EqualFold(name, modeName) {
			return RenderMode(index), nil
		}
	}
	return 0, fmt.Errorf("scene: unknown render mode '%s'; supported modes: %s", name, strings.Join(renderModeNames[:], ", "))
}
