package renderer

import "errors"

var (
	ErrNoWorld      = errors.New("renderer: no world defined")
	ErrDeviceLost   = errors.New("renderer: compute device lost")
	ErrInvalidFrame = errors.New("renderer: frame dims must be non-zero")
	ErrInvalidTiles = errors.New("renderer: invalid tile parameters")
)
