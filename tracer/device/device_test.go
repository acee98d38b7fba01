package device

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelectDevices(t *testing.T) {
	devList, err := SelectDevices(CpuDevice, "cpu")
	require.NoError(t, err)
	require.Len(t, devList, 1)
	require.Equal(t, "CPU", devList[0].Type.String())

	_, err = SelectDevices(GpuDevice, "")
	require.ErrorIs(t, err, ErrNoDevicesAvailable)

	require.True(t, strings.Contains(devList.String(), "Device 00"))
}

func TestKernelErrors(t *testing.T) {
	dev := createTestDevice(t)

	_, err := dev.Kernel("foo")
	require.ErrorIs(t, err, ErrUnknownKernel)

	RegisterKernel("test-noop", func(args []interface{}) (Invocation, error) {
		return func(x, y int) {}, nil
	})
	k, err := dev.Kernel("test-noop")
	require.NoError(t, err)
	require.ErrorIs(t, k.SetArgs("not supported"), ErrUnsupportedArgument)
}

func TestKernelExec(t *testing.T) {
	dev := createTestDevice(t)

	RegisterKernel("test-fill", func(args []interface{}) (Invocation, error) {
		buf, err := BufferArg(args, 0)
		if err != nil {
			return nil, err
		}
		width, err := Uint32Arg(args, 1)
		if err != nil {
			return nil, err
		}
		data := buf.Uint32s()
		return func(x, y int) {
			data[y*int(width)+x] = uint32(y*int(width) + x)
		}, nil
	})

	buf := dev.Buffer("out")
	require.NoError(t, buf.Allocate(4*8*5))

	k, err := dev.Kernel("test-fill")
	require.NoError(t, err)
	require.NoError(t, k.SetArgs(buf, uint32(8)))

	_, err = k.Exec2D(0, 0, 8, 5, 0, 2)
	require.NoError(t, err)

	out := make([]uint32, 8*5)
	require.NoError(t, buf.ReadData(0, 0, 0, out))
	for i, v := range out {
		require.Equal(t, uint32(i), v)
	}

	// Missing args surface as errors
	require.NoError(t, k.SetArgs())
	_, err = k.Exec2D(0, 0, 1, 1, 0, 0)
	require.Error(t, err)
}

func TestKernelExec1D(t *testing.T) {
	dev := createTestDevice(t)

	var count int64
	RegisterKernel("test-count", func(args []interface{}) (Invocation, error) {
		return func(x, y int) {
			atomic.AddInt64(&count, int64(x))
		}, nil
	})

	k, err := dev.Kernel("test-count")
	require.NoError(t, err)
	_, err = k.Exec1D(10, 1000, 64)
	require.NoError(t, err)

	// sum(10..1009)
	require.Equal(t, int64(1000*10+999*1000/2), count)
}

func TestKernelPanic(t *testing.T) {
	dev := createTestDevice(t)

	RegisterKernel("test-panic", func(args []interface{}) (Invocation, error) {
		return func(x, y int) {
			if x == 3 {
				panic("boom")
			}
		}, nil
	})

	k, err := dev.Kernel("test-panic")
	require.NoError(t, err)
	_, err = k.Exec1D(0, 10, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}

func TestDeviceLost(t *testing.T) {
	dev := createTestDevice(t)

	RegisterKernel("test-lose", func(args []interface{}) (Invocation, error) {
		return func(x, y int) {
			if x == 0 {
				dev.Lose(fmt.Errorf("driver reset"))
			}
		}, nil
	})

	buf := dev.Buffer("buf")
	require.NoError(t, buf.Allocate(16))

	k, err := dev.Kernel("test-lose")
	require.NoError(t, err)

	_, err = k.Exec1D(0, 4, 0)
	require.ErrorIs(t, err, ErrDeviceLost)
	require.Contains(t, err.Error(), "driver reset")

	// Every subsequent operation fails
	_, err = k.Exec1D(0, 4, 0)
	require.True(t, errors.Is(err, ErrDeviceLost))
	require.ErrorIs(t, buf.WriteData([]byte{1}, 0), ErrDeviceLost)
	_, err = dev.Kernel("test-lose")
	require.ErrorIs(t, err, ErrDeviceLost)
	require.ErrorIs(t, dev.Init(), ErrDeviceLost)
}

func TestDeviceNotReady(t *testing.T) {
	dev := NewCpuDevice("test", 1)
	_, err := dev.Kernel("foo")
	require.ErrorIs(t, err, ErrDeviceNotReady)
}

func createTestDevice(t *testing.T) *Device {
	dev := NewCpuDevice("test", 4)
	require.NoError(t, dev.Init())
	t.Cleanup(dev.Close)
	return dev
}
