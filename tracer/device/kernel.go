package device

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/microsoft/morphcharts-sub000/types"
	"golang.org/x/sync/errgroup"
)

// A single kernel invocation for the global work item (x, y). 1D kernels
// are invoked with y == 0.
type Invocation func(x, y int)

// Binds a set of kernel arguments and returns the invocation to run for each
// work item. Factories run once per dispatch, before any invocation.
type KernelFactory func(args []interface{}) (Invocation, error)

var (
	registryMutex  sync.RWMutex
	kernelRegistry = make(map[string]KernelFactory)
)

// Register a kernel implementation under a name. Registering the same name
// twice replaces the previous implementation.
func RegisterKernel(name string, factory KernelFactory) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	kernelRegistry[name] = factory
}

func lookupKernel(name string) KernelFactory {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	return kernelRegistry[name]
}

// A named kernel bound to a device.
type Kernel struct {
	device  *Device
	factory KernelFactory
	name    string
	args    []interface{}
}

// Get kernel name.
func (k *Kernel) Name() string {
	return k.name
}

// Free any allocated resources used by this kernel.
func (k *Kernel) Release() {
	k.args = nil
}

// Bind arguments to kernel.
func (k *Kernel) SetArgs(args ...interface{}) error {
	for argIndex, arg := range args {
		switch arg.(type) {
		case *Buffer, int32, uint32, float32, types.Vec2, types.Vec3, types.Vec4:
		default:
			return fmt.Errorf(
				"cpu device (%s): could not set arg %d for kernel %s; %w: %s",
				k.device.Name,
				argIndex,
				k.name,
				ErrUnsupportedArgument,
				reflect.TypeOf(arg),
			)
		}
	}

	k.args = append(k.args[:0], args...)
	return nil
}

// Execute 1D kernel. If localWorkSize is equal to 0 the device picks the
// work group size.
func (k *Kernel) Exec1D(offset, globalWorkSize, localWorkSize int) (time.Duration, error) {
	if localWorkSize <= 0 {
		localWorkSize = 256
	}
	groups := (globalWorkSize + localWorkSize - 1) / localWorkSize
	return k.exec(groups, func(inv Invocation, group int) {
		start := offset + group*localWorkSize
		end := start + localWorkSize
		if end > offset+globalWorkSize {
			end = offset + globalWorkSize
		}
		for x := start; x < end; x++ {
			inv(x, 0)
		}
	})
}

// Execute 2D kernel. Work groups span localWorkSizeY rows; if it is 0 each
// row forms a work group. The X work group size is ignored.
func (k *Kernel) Exec2D(offsetX, offsetY, globalWorkSizeX, globalWorkSizeY, localWorkSizeX, localWorkSizeY int) (time.Duration, error) {
	if localWorkSizeY <= 0 {
		localWorkSizeY = 1
	}
	groups := (globalWorkSizeY + localWorkSizeY - 1) / localWorkSizeY
	return k.exec(groups, func(inv Invocation, group int) {
		startY := offsetY + group*localWorkSizeY
		endY := startY + localWorkSizeY
		if endY > offsetY+globalWorkSizeY {
			endY = offsetY + globalWorkSizeY
		}
		for y := startY; y < endY; y++ {
			for x := offsetX; x < offsetX+globalWorkSizeX; x++ {
				inv(x, y)
			}
		}
	})
}

// Bind args, run all work groups across the device lanes and wait for them
// to complete.
func (k *Kernel) exec(groups int, runGroup func(inv Invocation, group int)) (time.Duration, error) {
	if err := k.device.Err(); err != nil {
		return 0, err
	}

	tick := time.Now()
	inv, err := k.factory(k.args)
	if err != nil {
		return 0, fmt.Errorf("cpu device (%s): unable to execute kernel %s: %w", k.device.Name, k.name, err)
	}

	var g errgroup.Group
	g.SetLimit(k.device.Lanes)
	for group := 0; group < groups; group++ {
		group := group
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("cpu device (%s): kernel %s did not complete successfully: %v", k.device.Name, k.name, r)
				}
			}()
			runGroup(inv, group)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	// The device may have been lost while the dispatch was running
	if err := k.device.Err(); err != nil {
		return 0, err
	}
	return time.Since(tick), nil
}

// Helpers for kernel factories that unpack bound arguments.

// Get the buffer argument at index.
func BufferArg(args []interface{}, index int) (*Buffer, error) {
	if index >= len(args) {
		return nil, fmt.Errorf("missing buffer argument %d", index)
	}
	buf, ok := args[index].(*Buffer)
	if !ok {
		return nil, fmt.Errorf("argument %d: expected *Buffer; got %T", index, args[index])
	}
	return buf, nil
}

// Get the uint32 argument at index.
func Uint32Arg(args []interface{}, index int) (uint32, error) {
	if index >= len(args) {
		return 0, fmt.Errorf("missing uint32 argument %d", index)
	}
	v, ok := args[index].(uint32)
	if !ok {
		return 0, fmt.Errorf("argument %d: expected uint32; got %T", index, args[index])
	}
	return v, nil
}
