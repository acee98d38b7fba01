package compute

import "errors"

var (
	ErrNoSceneData         = errors.New("compute tracer: no scene data uploaded")
	ErrNotInitialized      = errors.New("compute tracer: tracer not initialized")
	ErrFrameSizeMismatch   = errors.New("compute tracer: request dims do not match the allocated tile buffers")
	ErrInvalidFrameSize    = errors.New("compute tracer: frame dims must be non-zero")
	ErrFramebufferTooSmall = errors.New("compute tracer: host framebuffer too small")
)
