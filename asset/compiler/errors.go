package compiler

import "errors"

var (
	ErrEmptyWorld = errors.New("scene compiler: world contains no primitives")
)
