package renderer

import "fmt"

// The frame controller state.
type State uint8

const (
	// No valid world has been compiled.
	Idle State = iota

	// A compiled world is available; accumulation starts on the next frame.
	Ready

	// Frames are being dispatched and samples accumulated.
	Accumulating

	// The current tile reached its sample target and more tiles remain.
	TileAdvance

	// All tiles reached their sample target.
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Accumulating:
		return "accumulating"
	case TileAdvance:
		return "tileAdvance"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// An event that invalidates the accumulated samples.
type Event uint8

const (
	Resize Event = 1 << iota
	WorldChanged
	CameraChanged
	RenderModeChanged
	MultisampleChanged
	TilesChanged
)

func (ev Event) String() string {
	switch ev {
	case Resize:
		return "resize"
	case WorldChanged:
		return "worldChanged"
	case CameraChanged:
		return "cameraChanged"
	case RenderModeChanged:
		return "renderModeChanged"
	case MultisampleChanged:
		return "multisampleChanged"
	case TilesChanged:
		return "tilesChanged"
	}
	return fmt.Sprintf("event(%d)", uint8(ev))
}
