package device

import "errors"

var (
	ErrDeviceLost          = errors.New("device: device context lost")
	ErrDeviceNotReady      = errors.New("device: device not initialized")
	ErrUnknownKernel       = errors.New("device: unknown kernel")
	ErrBufferNotAllocated  = errors.New("device: buffer not allocated")
	ErrNoDevicesAvailable  = errors.New("device: no devices matched the selection criteria")
	ErrUnsupportedArgument = errors.New("device: unsupported kernel argument type")
)
