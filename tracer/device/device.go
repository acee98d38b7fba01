// Package device implements the compute dispatch capability used by the
// tracer: named byte buffers plus named data-parallel kernels executed over
// 1D or 2D index spaces. The implementation runs kernels on host CPU cores.
package device

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/microsoft/morphcharts-sub000/log"
)

type DeviceType uint8

// Supported device types.
const (
	CpuDevice   DeviceType = 1 << iota
	GpuDevice              = 1 << iota
	OtherDevice            = 1 << iota
	AllDevices             = 0xFF
)

var (
	indentRegex = regexp.MustCompile("(?m)^")
)

func (dt DeviceType) String() string {
	switch dt {
	case CpuDevice:
		return "CPU"
	case GpuDevice:
		return "GPU"
	case OtherDevice:
		return "Other"
	}
	return fmt.Sprintf("deviceType(%d)", uint8(dt))
}

// A compute device.
type Device struct {
	Name string
	Type DeviceType

	// Number of invocation groups executed concurrently.
	Lanes int

	// Speed estimate relative to a single lane.
	Speed uint32

	logger log.Logger

	mutex sync.Mutex
	ready bool
	lost  error
}

// A list of devices.
type DeviceList []*Device

// Implements Stringer.
func (d *Device) String() string {
	return fmt.Sprintf(
		"Name: %s\nType: %s\nSpecs: %d lanes, %d relative speed",
		d.Name,
		d.Type.String(),
		d.Lanes,
		d.Speed,
	)
}

// Create a CPU device that executes kernels with the given number of lanes.
// If lanes is <= 0 the number of available CPUs is used.
func NewCpuDevice(name string, lanes int) *Device {
	if lanes <= 0 {
		lanes = runtime.NumCPU()
	}
	return &Device{
		Name:   name,
		Type:   CpuDevice,
		Lanes:  lanes,
		Speed:  uint32(lanes),
		logger: log.New(fmt.Sprintf("cpu device (%s)", name)),
	}
}

// List the devices available on this system.
func ListDevices() DeviceList {
	return DeviceList{
		NewCpuDevice(fmt.Sprintf("CPU (%s/%s)", runtime.GOOS, runtime.GOARCH), 0),
	}
}

// Select devices whose type matches the type mask and whose name contains
// nameFilter (case-insensitive). An empty filter matches all devices.
func SelectDevices(typeMask DeviceType, nameFilter string) (DeviceList, error) {
	var selected DeviceList
	for _, dev := range ListDevices() {
		if dev.Type&typeMask == 0 {
			continue
		}
		if nameFilter != "" && !strings.Contains(strings.ToLower(dev.Name), strings.ToLower(nameFilter)) {
			continue
		}
		selected = append(selected, dev)
	}

	if len(selected) == 0 {
		return nil, ErrNoDevicesAvailable
	}
	return selected, nil
}

// Initialize device.
func (d *Device) Init() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.lost != nil {
		return d.lostError()
	}
	if d.logger == nil {
		d.logger = log.New(fmt.Sprintf("cpu device (%s)", d.Name))
	}
	if d.Lanes <= 0 {
		d.Lanes = runtime.NumCPU()
	}
	if !d.ready {
		d.logger.Debugf("initialized device with %d lanes", d.Lanes)
	}
	d.ready = true
	return nil
}

// Shut down the device.
func (d *Device) Close() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.ready = false
}

// Mark the device context as lost. All subsequent operations fail with an
// error wrapping ErrDeviceLost and the supplied cause.
func (d *Device) Lose(cause error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if cause == nil {
		cause = ErrDeviceLost
	}
	if d.lost == nil && d.logger != nil {
		d.logger.Errorf("device lost: %v", cause)
	}
	d.lost = cause
}

// Check whether the device can accept work.
func (d *Device) Err() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.lost != nil {
		return d.lostError()
	}
	if !d.ready {
		return ErrDeviceNotReady
	}
	return nil
}

func (d *Device) lostError() error {
	if d.lost == ErrDeviceLost {
		return fmt.Errorf("cpu device (%s): %w", d.Name, ErrDeviceLost)
	}
	return fmt.Errorf("cpu device (%s): %w: %v", d.Name, ErrDeviceLost, d.lost)
}

// Load kernel by name.
func (d *Device) Kernel(name string) (*Kernel, error) {
	if err := d.Err(); err != nil {
		return nil, err
	}

	factory := lookupKernel(name)
	if factory == nil {
		return nil, fmt.Errorf("cpu device (%s): could not load kernel %s: %w", d.Name, name, ErrUnknownKernel)
	}

	return &Kernel{
		device:  d,
		factory: factory,
		name:    name,
	}, nil
}

// Create an empty buffer.
func (d *Device) Buffer(name string) *Buffer {
	return &Buffer{
		device: d,
		name:   name,
	}
}

// Describe a device list.
func (dl DeviceList) String() string {
	var buf strings.Builder
	for dIdx, d := range dl {
		buf.WriteString(fmt.Sprintf("Device %02d:\n", dIdx))
		buf.WriteString(indentRegex.ReplaceAllString(d.String(), "  "))
		buf.WriteString("\n")
	}
	return buf.String()
}
